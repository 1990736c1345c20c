package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/alexschlessinger/dispatch/dispatch"
	"github.com/alexschlessinger/dispatch/tools"
)

func toolsCommand() *cli.Command {
	return &cli.Command{
		Name:  "tools",
		Usage: "Show derived metadata for a tool pool",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "JSON file listing tools (name + description)",
			},
			&cli.StringFlag{
				Name:  "mcp",
				Usage: "MCP servers config file to connect and list tools from",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			resolver, _, err := setup(cmd)
			if err != nil {
				return err
			}

			pool, _, err := loadPool(cmd)
			if err != nil {
				return err
			}

			analyzer := resolver.Analyzer()
			for _, tool := range pool {
				meta := analyzer.AnalyzeTool(tool)
				caps := strings.Join(meta.Capabilities.Strings(), ", ")
				if caps == "" {
					caps = "-"
				}
				server := meta.Server
				if server == "" {
					server = "builtin"
				}
				fmt.Printf("%s  %s  %s  %s\n",
					boldStyle.Styled(fmt.Sprintf("%-36s", fit(meta.Name, 36))),
					dimStyle.Styled(fmt.Sprintf("%-18s", fit(server, 18))),
					highlightStyle.Styled(fmt.Sprintf("%3d", meta.Priority)),
					caps)
			}
			return nil
		},
	}
}

func filterCommand() *cli.Command {
	return &cli.Command{
		Name:  "filter",
		Usage: "Show which tools would be exposed to the model and which hidden",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "JSON file listing tools (name + description)",
			},
			&cli.StringFlag{
				Name:  "mcp",
				Usage: "MCP servers config file to connect and list tools from",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			resolver, _, err := setup(cmd)
			if err != nil {
				return err
			}

			pool, _, err := loadPool(cmd)
			if err != nil {
				return err
			}

			filtered, hidden := resolver.FilterTools(pool)

			for _, tool := range filtered {
				fmt.Printf("%s %s\n", successStyle.Styled("keep"), tools.Name(tool))
			}
			for _, h := range hidden {
				fmt.Printf("%s %s\n", errorStyle.Styled("hide"), tools.Name(h.Tool))
				fmt.Printf("     %s\n", dimStyle.Styled(h.Reason))
			}
			fmt.Printf("\n%d exposed, %d hidden\n", len(filtered), len(hidden))
			return nil
		},
	}
}

func guidanceCommand() *cli.Command {
	return &cli.Command{
		Name:  "guidance",
		Usage: "Render capability guidance for connected MCP servers",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "connected",
				Usage: "Connected MCP server name (can be specified multiple times)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			resolver, _, err := setup(cmd)
			if err != nil {
				return err
			}

			lines := resolver.CapabilityGuidance(cmd.StringSlice("connected"))
			if len(lines) == 0 {
				fmt.Println(dimStyle.Styled("no guidance"))
				return nil
			}
			for _, line := range lines {
				fmt.Println(line)
			}
			return nil
		},
	}
}

func execCommand() *cli.Command {
	return &cli.Command{
		Name:  "exec",
		Usage: "Execute a tool-call batch against the built-in tools",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "calls",
				Usage:    "JSON file listing tool calls (id, name, arguments)",
				Required: true,
			},
			&cli.StringSliceFlag{
				Name:    "tool",
				Aliases: []string{"t"},
				Usage:   "Shell tool executable path (can be specified multiple times)",
			},
			&cli.IntFlag{
				Name:  "max-concurrency",
				Usage: "Maximum parallel tool executions",
			},
			&cli.BoolFlag{
				Name:  "sequential",
				Usage: "Disable concurrent execution entirely",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			_, cfg, err := setup(cmd)
			if err != nil {
				return err
			}

			calls, err := loadCalls(cmd.String("calls"))
			if err != nil {
				return err
			}

			registry := tools.NewToolRegistry(tools.Builtins())
			for _, tool := range tools.LoadShellTools(cmd.StringSlice("tool")) {
				registry.Register(tool)
			}

			execCfg := cfg.ExecConfig()
			if cmd.Int("max-concurrency") > 0 {
				execCfg.MaxConcurrency = cmd.Int("max-concurrency")
			}
			if cmd.Bool("sequential") {
				execCfg.Enabled = false
			}

			executor := dispatch.NewExecutor(cfg.SafetyTable(), execCfg)
			validator := dispatch.NewValidator(registry)

			results, err := executor.Execute(ctx, calls, validator.Wrap(dispatch.CallsFromRegistry(registry)))
			if err != nil {
				return err
			}

			for _, result := range results {
				if result.Err != nil {
					fmt.Printf("%s %s: %v\n", errorStyle.Styled("fail"), result.Call.Name, result.Err)
					continue
				}
				fmt.Printf("%s %s: %s\n", successStyle.Styled("ok  "), result.Call.Name, fit(result.Output, outputWidth()))
			}
			return nil
		},
	}
}
