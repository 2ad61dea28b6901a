// Package cli provides the command-line interface with injectable io.Writer for testing.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	ucli "github.com/urfave/cli/v2"

	"github.com/mcdonaldj/bfm/internal/config"
	"github.com/mcdonaldj/bfm/internal/dispatch"
	"github.com/mcdonaldj/bfm/internal/errcode"
	"github.com/mcdonaldj/bfm/internal/plan"
)

// ConfigService provides configuration operations for the CLI.
type ConfigService interface {
	// Load reads the config at path, or at the default location when path
	// is empty.
	Load(path string) (*config.Config, error)
	Save(cfg *config.Config) error
	ConfigPath() (string, error)
	DefaultConfig() *config.Config
}

// PlanService loads plan files for the apply command.
type PlanService interface {
	Load(path string) ([]dispatch.Command, error)
}

// Runner executes parsed commands.
type Runner interface {
	Run(cmd dispatch.Command) error
	RunAll(cmds []dispatch.Command) (int, error)
}

// RunnerFactory builds a Runner for cfg. Verbose runners mirror the log to
// the given writer.
type RunnerFactory func(cfg *config.Config, verbose bool, stderr io.Writer) (Runner, error)

// CLI represents the command-line interface with injectable dependencies.
type CLI struct {
	Out     io.Writer // Standard output
	Err     io.Writer // Standard error
	Version string    // Application version
	Args    []string  // Command arguments (like os.Args)

	// Exit function for testability (defaults to os.Exit)
	Exit func(code int)

	// Injectable dependencies (nil means use defaults)
	ConfigSvc ConfigService
	PlanSvc   PlanService
	NewRunner RunnerFactory

	// Color functions (can be disabled for testing)
	green func(a ...interface{}) string
	cyan  func(a ...interface{}) string
	gray  func(a ...interface{}) string
	red   func(a ...interface{}) string
}

// New creates a new CLI with default settings.
func New(version string) *CLI {
	return &CLI{
		Out:     os.Stdout,
		Err:     os.Stderr,
		Version: version,
		Args:    os.Args,
		Exit:    os.Exit,
		green:   color.New(color.FgGreen, color.Bold).SprintFunc(),
		cyan:    color.New(color.FgCyan).SprintFunc(),
		gray:    color.New(color.FgHiBlack).SprintFunc(),
		red:     color.New(color.FgRed).SprintFunc(),
	}
}

// NewForTesting creates a CLI configured for testing (no colors, captured output).
func NewForTesting(out, errOut io.Writer, args []string) *CLI {
	noColor := func(a ...interface{}) string { return fmt.Sprint(a...) }
	return &CLI{
		Out:     out,
		Err:     errOut,
		Version: "test",
		Args:    args,
		Exit:    func(code int) {},
		green:   noColor,
		cyan:    noColor,
		gray:    noColor,
		red:     noColor,
	}
}

// defaultConfigService wraps the config package functions.
type defaultConfigService struct{}

func (d *defaultConfigService) Load(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFrom(path)
}
func (d *defaultConfigService) Save(cfg *config.Config) error { return cfg.Save() }
func (d *defaultConfigService) ConfigPath() (string, error)   { return config.ConfigPath() }
func (d *defaultConfigService) DefaultConfig() *config.Config { return config.DefaultConfig() }

// defaultPlanService wraps the plan package functions.
type defaultPlanService struct{}

func (d *defaultPlanService) Load(path string) ([]dispatch.Command, error) { return plan.Load(path) }

// Helper methods to get the service or default
func (c *CLI) configSvc() ConfigService {
	if c.ConfigSvc != nil {
		return c.ConfigSvc
	}
	return &defaultConfigService{}
}

func (c *CLI) planSvc() PlanService {
	if c.PlanSvc != nil {
		return c.PlanSvc
	}
	return &defaultPlanService{}
}

func (c *CLI) runnerFactory() RunnerFactory {
	if c.NewRunner != nil {
		return c.NewRunner
	}
	return defaultRunner
}

// Run executes the CLI with the configured arguments. Failures are printed
// to Err and the process exits with the failing call's errno.
func (c *CLI) Run() {
	if err := c.app().Run(c.Args); err != nil {
		fmt.Fprintf(c.Err, "%s %v\n", c.red("Error:"), err)
		c.Exit(errcode.ExitStatus(err))
	}
}

func (c *CLI) app() *ucli.App {
	return &ucli.App{
		Name:      "bfm",
		Usage:     "basic file manager",
		Version:   c.Version,
		Writer:    c.Out,
		ErrWriter: c.Err,
		// Errors are reported by Run so the exit status can carry the errno.
		ExitErrHandler: func(*ucli.Context, error) {},
		Flags: []ucli.Flag{
			&ucli.StringFlag{Name: "config", Usage: "read settings from `FILE`"},
			&ucli.StringFlag{Name: "log", Usage: "append a log of every operation to `DIR`/log.txt"},
			&ucli.BoolFlag{Name: "verbose", Usage: "mirror the log on standard error"},
		},
		Commands: []*ucli.Command{
			{
				Name:      "create",
				Usage:     "create an empty file, or a directory with --dir",
				ArgsUsage: "PATH",
				Flags: []ucli.Flag{
					&ucli.BoolFlag{Name: "dir", Aliases: []string{"d"}, Usage: "create a directory"},
				},
				Action: func(ctx *ucli.Context) error {
					args, err := requireArgs(ctx, 1)
					if err != nil {
						return err
					}
					return c.runOne(ctx, dispatch.Command{Create: args[0], CreateDir: ctx.Bool("dir")})
				},
			},
			{
				Name:      "rename",
				Usage:     "rename a file or directory",
				ArgsUsage: "OLD NEW",
				Action: func(ctx *ucli.Context) error {
					args, err := requireArgs(ctx, 2)
					if err != nil {
						return err
					}
					return c.runOne(ctx, dispatch.Command{RenameFrom: args[0], RenameTo: args[1]})
				},
			},
			{
				Name:      "append",
				Usage:     "append text, or even 16-bit numbers with --numbers, to a file",
				ArgsUsage: "PATH VALUE",
				Flags: []ucli.Flag{
					&ucli.BoolFlag{Name: "numbers", Aliases: []string{"b"}, Usage: "treat VALUE as the first even number"},
				},
				Action: func(ctx *ucli.Context) error {
					args, err := requireArgs(ctx, 2)
					if err != nil {
						return err
					}
					return c.runOne(ctx, dispatch.Command{
						Append:        args[0],
						AppendValue:   args[1],
						AppendNumbers: ctx.Bool("numbers"),
					})
				},
			},
			{
				Name:      "print",
				Usage:     "print the first bytes of a file",
				ArgsUsage: "PATH",
				Action: func(ctx *ucli.Context) error {
					args, err := requireArgs(ctx, 1)
					if err != nil {
						return err
					}
					return c.runOne(ctx, dispatch.Command{Print: args[0]})
				},
			},
			{
				Name:      "delete",
				Usage:     "delete a file, or a directory and everything below it",
				ArgsUsage: "PATH",
				Action: func(ctx *ucli.Context) error {
					args, err := requireArgs(ctx, 1)
					if err != nil {
						return err
					}
					return c.runOne(ctx, dispatch.Command{Delete: args[0]})
				},
			},
			{
				Name:  "run",
				Usage: "run several operations in one invocation (create, rename, append, print, delete)",
				Flags: []ucli.Flag{
					&ucli.StringFlag{Name: "create", Aliases: []string{"c"}, Usage: "create `PATH`"},
					&ucli.BoolFlag{Name: "dir", Aliases: []string{"d"}, Usage: "create a directory instead of a file"},
					&ucli.StringFlag{Name: "rename", Aliases: []string{"r"}, Usage: "rename `OLD`"},
					&ucli.StringFlag{Name: "to", Usage: "new name for --rename"},
					&ucli.StringFlag{Name: "append", Aliases: []string{"a"}, Usage: "append to `PATH`"},
					&ucli.StringFlag{Name: "text", Usage: "text to append"},
					&ucli.StringFlag{Name: "numbers", Aliases: []string{"b"}, Usage: "append even numbers from `START`"},
					&ucli.StringFlag{Name: "print", Aliases: []string{"w"}, Usage: "print the first bytes of `PATH`"},
					&ucli.StringFlag{Name: "delete", Aliases: []string{"f"}, Usage: "delete `PATH`"},
				},
				Action: func(ctx *ucli.Context) error {
					cmd := dispatch.Command{
						Create:      ctx.String("create"),
						CreateDir:   ctx.Bool("dir"),
						RenameFrom:  ctx.String("rename"),
						RenameTo:    ctx.String("to"),
						Append:      ctx.String("append"),
						AppendValue: ctx.String("text"),
						Print:       ctx.String("print"),
						Delete:      ctx.String("delete"),
					}
					if ctx.IsSet("numbers") {
						if ctx.IsSet("text") {
							return fmt.Errorf("--text and --numbers cannot be combined")
						}
						cmd.AppendNumbers = true
						cmd.AppendValue = ctx.String("numbers")
					}
					return c.runOne(ctx, cmd)
				},
			},
			{
				Name:      "apply",
				Usage:     "run the steps of a YAML plan in order",
				ArgsUsage: "PLAN",
				Action: func(ctx *ucli.Context) error {
					args, err := requireArgs(ctx, 1)
					if err != nil {
						return err
					}
					return c.applyPlan(ctx, args[0])
				},
			},
			{
				Name:   "init",
				Usage:  "create the default config file",
				Action: func(ctx *ucli.Context) error { return c.initConfig() },
			},
			{
				Name:  "version",
				Usage: "show version",
				Action: func(ctx *ucli.Context) error {
					fmt.Fprintf(c.Out, "bfm v%s\n", c.Version)
					return nil
				},
			},
		},
	}
}

// requireArgs returns exactly n positional arguments or a usage error.
func requireArgs(ctx *ucli.Context, n int) ([]string, error) {
	args := ctx.Args().Slice()
	if len(args) != n {
		return nil, fmt.Errorf("usage: bfm %s %s: %w", ctx.Command.Name, ctx.Command.ArgsUsage, dispatch.ErrMissingPath)
	}
	return args, nil
}

// loadConfig reads the config named by --config and applies --log.
func (c *CLI) loadConfig(ctx *ucli.Context) (*config.Config, error) {
	cfg, err := c.configSvc().Load(ctx.String("config"))
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if ctx.IsSet("log") {
		if cfg.LogDir, err = config.ExpandPath(ctx.String("log")); err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func (c *CLI) runner(ctx *ucli.Context) (Runner, error) {
	cfg, err := c.loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	return c.runnerFactory()(cfg, ctx.Bool("verbose"), c.Err)
}

func (c *CLI) runOne(ctx *ucli.Context, cmd dispatch.Command) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	r, err := c.runner(ctx)
	if err != nil {
		return err
	}
	return r.Run(cmd)
}

// applyPlan loads and runs a plan, stopping at the first failing step.
func (c *CLI) applyPlan(ctx *ucli.Context, path string) error {
	cmds, err := c.planSvc().Load(path)
	if err != nil {
		return err
	}
	r, err := c.runner(ctx)
	if err != nil {
		return err
	}

	done, err := r.RunAll(cmds)
	if err != nil {
		fmt.Fprintf(c.Err, "%s %d of %d steps completed\n", c.gray("-"), done, len(cmds))
		return fmt.Errorf("step %d: %w", done+1, err)
	}
	fmt.Fprintf(c.Err, "%s Applied %s steps from %s\n", c.green("*"), c.cyan(fmt.Sprintf("%d", done)), path)
	return nil
}

// initConfig creates the default config file.
func (c *CLI) initConfig() error {
	svc := c.configSvc()
	if err := svc.Save(svc.DefaultConfig()); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	path, err := svc.ConfigPath()
	if err != nil {
		return err
	}
	fmt.Fprintf(c.Out, "%s Created config at %s\n", c.green("*"), path)
	return nil
}
