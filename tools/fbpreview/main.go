// Command fbpreview runs the text console driver against an in-memory frame
// buffer and an emulated CRT controller and shows the resulting screen. It
// is used to check console output without booting the kernel.
package main

import (
	"fmt"
	"io"
	"kestrel/device/video/console"
	"os"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
)

type options struct {
	file   string
	maxLen uint32
	cooked bool
	dump   bool
}

func exit(err error) {
	fmt.Fprintf(os.Stderr, "[fbpreview] error: %s\n", err.Error())
	os.Exit(1)
}

func newRootCommand() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "fbpreview [text...]",
		Short: "Preview text console output on the host",
		Long: "fbpreview writes text to an 80x25 text console backed by an in-memory\n" +
			"frame buffer and displays the result, including the hardware cursor.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := loadText(opts.file, args)
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("max-len") {
				opts.maxLen = uint32(len(text))
			}

			cons, c := emulate(text, opts)
			if opts.dump {
				return dump(cmd.OutOrStdout(), cons, c)
			}

			return show(cons, c)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "read the text from a file instead of the arguments")
	cmd.Flags().Uint32VarP(&opts.maxLen, "max-len", "n", 0, "maximum number of bytes to write (default: the text length)")
	cmd.Flags().BoolVar(&opts.cooked, "cooked", false, "treat '\\n' as a line break instead of a glyph")
	cmd.Flags().BoolVar(&opts.dump, "dump", false, "print the screen as plain text instead of drawing it")

	return cmd
}

func loadText(file string, args []string) ([]byte, error) {
	if file == "" {
		return []byte(strings.Join(args, " ")), nil
	}

	if len(args) != 0 {
		return nil, fmt.Errorf("--file cannot be combined with text arguments")
	}

	if file == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(file)
}

// emulate writes text to a fresh console and returns it together with the
// CRT controller that received its cursor updates.
func emulate(text []byte, opts options) (*console.VgaTextConsole, *crtc) {
	var (
		c    = &crtc{}
		fb   = make([]uint16, console.Columns*console.Rows)
		cons = console.NewBufferedVgaTextConsole(fb, c.write)
	)

	cons.DriverInit(io.Discard)

	if !opts.cooked {
		cons.WriteText(text, opts.maxLen)
		return cons, c
	}

	if uint32(len(text)) > opts.maxLen {
		text = text[:opts.maxLen]
	}
	w := &console.Writer{Console: cons}
	w.Write(text)

	return cons, c
}

func show(cons *console.VgaTextConsole, c *crtc) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}

	if err = screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	render(screen, cons, c)
	waitForKey(screen)
	return nil
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		exit(err)
	}
}
