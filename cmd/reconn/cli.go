// Copyright 2021 The reconn Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gogama/reconn"
	"github.com/gogama/reconn/request"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "0.1.0"

// errNotAlive is returned by the alive command when the probe fails, so
// that the process exits non-zero.
var errNotAlive = errors.New("not alive")

type options struct {
	configFile string
	headers    []string
	params     []string
	data       string
	timeout    time.Duration
	retries    int
	insecure   bool
	verbose    bool
	jsonPath   string
	showStatus bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "reconn",
		Short:         "Send requests through a self-healing single-origin HTTP client",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVarP(&opts.configFile, "config", "c", "", "YAML client configuration file")
	pf.StringArrayVarP(&opts.headers, "header", "H", nil, "request header as 'Name: value' (repeatable)")
	pf.DurationVarP(&opts.timeout, "timeout", "t", 0, "overall request timeout, including retries")
	pf.IntVar(&opts.retries, "retries", -1, "maximum connection rebuilds on transport failure")
	pf.BoolVarP(&opts.insecure, "insecure", "k", false, "skip TLS certificate verification")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "log client activity to stderr")

	root.AddCommand(newGetCmd(opts), newDoCmd(opts), newAliveCmd(opts))
	return root
}

func newGetCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get ENDPOINT PATH",
		Short: "Issue a GET request",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, "GET", args[0], args[1])
		},
	}
	addRequestFlags(cmd, opts)
	cmd.Flags().StringVar(&opts.jsonPath, "json", "", "print only the value at this gjson path of the response")
	return cmd
}

func newDoCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "do METHOD ENDPOINT PATH",
		Short: "Issue a request with any supported method",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, strings.ToUpper(args[0]), args[1], args[2])
		},
	}
	addRequestFlags(cmd, opts)
	cmd.Flags().StringVarP(&opts.data, "data", "d", "", "raw request body (conflicts with --param)")
	return cmd
}

func newAliveCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "alive ENDPOINT [PATH]",
		Short: "Probe the endpoint and report whether it answers with a 2XX status",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/"
			if len(args) > 1 {
				path = args[1]
			}
			cl, err := newClient(cmd, opts, args[0])
			if err != nil {
				return err
			}
			defer func() { _ = cl.Close() }()
			if !cl.IsAlive(contextOf(cmd), path) {
				fmt.Fprintln(cmd.OutOrStdout(), "dead")
				return errNotAlive
			}
			fmt.Fprintln(cmd.OutOrStdout(), "alive")
			return nil
		},
	}
}

func addRequestFlags(cmd *cobra.Command, opts *options) {
	cmd.Flags().StringArrayVarP(&opts.params, "param", "p", nil, "parameter as key=value, in order (repeatable)")
	cmd.Flags().BoolVarP(&opts.showStatus, "status", "s", false, "print the status line before the body")
}

func run(cmd *cobra.Command, opts *options, method, endpoint, path string) error {
	header, err := parseHeaders(opts.headers)
	if err != nil {
		return err
	}
	var params interface{}
	if opts.data != "" {
		if len(opts.params) > 0 {
			return errors.New("--data and --param are mutually exclusive")
		}
		params = opts.data
	} else if len(opts.params) > 0 {
		if params, err = parseParams(opts.params); err != nil {
			return err
		}
	}

	cl, err := newClient(cmd, opts, endpoint)
	if err != nil {
		return err
	}
	defer func() { _ = cl.Close() }()

	ctx := contextOf(cmd)
	out := cmd.OutOrStdout()

	if opts.jsonPath != "" {
		res, err := cl.GetJSON(ctx, path, header, params)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, res.Get(opts.jsonPath).String())
		return nil
	}

	resp, err := cl.Do(ctx, method, path, header, params)
	if err != nil {
		return err
	}
	return printResponse(out, resp, opts.showStatus)
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func newClient(cmd *cobra.Command, opts *options, endpoint string) (*reconn.Client, error) {
	logger := zap.NewNop()
	if opts.verbose {
		var err error
		cfg := zap.NewDevelopmentConfig()
		cfg.OutputPaths = []string{"stderr"}
		if logger, err = cfg.Build(); err != nil {
			return nil, err
		}
	}

	var cfg reconn.Config
	if opts.configFile != "" {
		var err error
		if cfg, err = reconn.LoadConfig(opts.configFile, logger); err != nil {
			return nil, err
		}
	}
	cfg.Logger = logger
	if opts.timeout > 0 {
		cfg.RequestTimeout = opts.timeout
	}
	if opts.retries >= 0 {
		cfg.MaxRetries = reconn.Retries(opts.retries)
	}
	if opts.insecure {
		cfg.InsecureSkipVerify = true
	}
	return reconn.NewClient(endpoint, cfg)
}

func printResponse(w io.Writer, resp *reconn.Response, status bool) error {
	if status {
		if _, err := fmt.Fprintf(w, "%d (%s)\n", resp.StatusCode, resp.Duration.Round(time.Millisecond)); err != nil {
			return err
		}
	}
	_, err := w.Write(resp.Body)
	if err == nil && len(resp.Body) > 0 && resp.Body[len(resp.Body)-1] != '\n' {
		_, err = io.WriteString(w, "\n")
	}
	return err
}

func parseHeaders(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	h := make(map[string]string, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, s := range raw {
		parts := strings.SplitN(s, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid header %q, want 'Name: value'", s)
		}
		name := strings.TrimSpace(parts[0])
		if _, ok := seen[strings.ToLower(name)]; ok {
			return nil, fmt.Errorf("duplicate header %q", name)
		}
		seen[strings.ToLower(name)] = struct{}{}
		h[name] = strings.TrimSpace(parts[1])
	}
	return h, nil
}

func parseParams(raw []string) (request.Params, error) {
	ps := make(request.Params, 0, len(raw))
	for _, s := range raw {
		parts := strings.SplitN(s, "=", 2)
		if len(parts) != 2 || parts[0] == "" {
			return nil, fmt.Errorf("invalid param %q, want key=value", s)
		}
		ps = ps.Add(parts[0], parts[1])
	}
	return ps, nil
}
