// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	md2man "github.com/cpuguy83/go-md2man/v2/md2man"
	"github.com/urfave/cli/v3"

	"github.com/hopeline/sitectl/internal/command"
)

// Doc generator:
// - Walks the sitectl command tree
// - Generates:
//   - docs/man/share/man1/sitectl-<cmd>.1 via md2man
//   - docs/tldr/sitectl-<cmd>.md from the command's usage line

func main() {
	var (
		repoRoot           string
		writeOnlyIfChanged bool
	)

	flag.StringVar(&repoRoot, "root", ".", "repo root (default current dir)")
	flag.BoolVar(&writeOnlyIfChanged, "only-if-changed", true, "only write files if content changed")
	flag.Parse()

	manOutDir := filepath.Join(repoRoot, "docs", "man", "share", "man1")
	tldrOutDir := filepath.Join(repoRoot, "docs", "tldr")

	for _, dir := range []string{manOutDir, tldrOutDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fatalf("creating output dir %s: %v", dir, err)
		}
	}

	app, err := command.InitApp(context.Background(), []string{"sitectl"})
	if err != nil {
		fatalf("building command tree: %v", err)
	}

	var processed int
	for _, cmd := range app.Commands {
		name := "sitectl-" + cmd.Name

		man := md2man.Render([]byte(manMarkdown(cmd)))
		if err := writeFileIfChanged(filepath.Join(manOutDir, name+".1"), man, writeOnlyIfChanged); err != nil {
			fatalf("writing man page for %s: %v", cmd.Name, err)
		}

		tldr := tldrMarkdown(cmd)
		if err := writeFileIfChanged(filepath.Join(tldrOutDir, name+".md"), []byte(tldr), writeOnlyIfChanged); err != nil {
			fatalf("writing tldr for %s: %v", cmd.Name, err)
		}

		processed++
	}

	if processed == 0 {
		fatalf("no commands found")
	}
}

func fatalf(f string, a ...any) {
	fmt.Fprintf(os.Stderr, f+"\n", a...)
	os.Exit(1)
}

func writeFileIfChanged(path string, new []byte, onlyIfChanged bool) error {
	if !onlyIfChanged {
		return os.WriteFile(path, new, 0o644)
	}
	old, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return os.WriteFile(path, new, 0o644)
		}
		return err
	}
	if bytes.Equal(bytes.TrimSpace(old), bytes.TrimSpace(new)) {
		return nil
	}
	return os.WriteFile(path, new, 0o644)
}

type usager interface {
	GetUsage() string
}

// manMarkdown renders cmd in the markdown dialect md2man expects.
func manMarkdown(cmd *cli.Command) string {
	var b strings.Builder

	title := strings.ToUpper("sitectl-" + cmd.Name)
	fmt.Fprintf(&b, "%% %s 1\n\n", title)
	b.WriteString("# NAME\n\n")
	fmt.Fprintf(&b, "sitectl-%s - %s\n\n", cmd.Name, cmd.Usage)

	b.WriteString("# SYNOPSIS\n\n")
	usage := cmd.UsageText
	if usage == "" {
		usage = strings.TrimSpace("sitectl " + cmd.Name + " " + cmd.ArgsUsage)
	}
	fmt.Fprintf(&b, "**%s**\n\n", usage)

	if len(cmd.Commands) > 0 {
		b.WriteString("# COMMANDS\n\n")
		for _, sub := range cmd.Commands {
			fmt.Fprintf(&b, "**%s** %s\n: %s\n\n", sub.Name, sub.ArgsUsage, sub.Usage)
		}
	}

	writeFlags(&b, "OPTIONS", cmd.Flags)
	for _, sub := range cmd.Commands {
		writeFlags(&b, strings.ToUpper(sub.Name)+" OPTIONS", sub.Flags)
	}

	return b.String()
}

func writeFlags(b *strings.Builder, heading string, flags []cli.Flag) {
	if len(flags) == 0 {
		return
	}
	fmt.Fprintf(b, "# %s\n\n", heading)
	for _, f := range flags {
		names := make([]string, 0, len(f.Names()))
		for _, n := range f.Names() {
			if len(n) == 1 {
				names = append(names, "-"+n)
			} else {
				names = append(names, "--"+n)
			}
		}
		usage := ""
		if u, ok := f.(usager); ok {
			usage = u.GetUsage()
		}
		fmt.Fprintf(b, "**%s**\n: %s\n\n", strings.Join(names, ", "), usage)
	}
}

func tldrMarkdown(cmd *cli.Command) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# sitectl-%s\n\n", cmd.Name)
	fmt.Fprintf(&b, "> %s.\n\n", strings.TrimSuffix(cmd.Usage, "."))

	b.WriteString("- Show help for the command:\n\n")
	fmt.Fprintf(&b, "`sitectl %s --help`\n", cmd.Name)

	if cmd.UsageText != "" {
		b.WriteString("\n- Basic usage:\n\n")
		fmt.Fprintf(&b, "`%s`\n", strings.Join(strings.Fields(cmd.UsageText), " "))
	}
	return b.String()
}
