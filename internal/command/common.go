// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"reflect"

	"github.com/apex/log"
	"github.com/hashicorp/jsonapi"
	"github.com/urfave/cli/v3"

	"github.com/hopeline/sitectl/internal/attrs"
	"github.com/hopeline/sitectl/internal/backend"
	"github.com/hopeline/sitectl/internal/loader"
	"github.com/hopeline/sitectl/internal/meta"
	"github.com/hopeline/sitectl/internal/output"
)

// ShortCircuitTLDR checks the --tldr flag and, if present and available,
// runs `tldr sitectl-<subcmd>` and returns true so the caller can exit early.
func ShortCircuitTLDR(ctx context.Context, cmd *cli.Command, subcmd string) bool {
	if !cmd.Bool("tldr") {
		return false
	}
	if _, err := exec.LookPath("tldr"); err == nil {
		c := exec.CommandContext(ctx, "tldr", "sitectl-"+subcmd)
		c.Stdout = writer(cmd)
		c.Stderr = os.Stderr
		_ = c.Run()
	}
	return true
}

// DumpSchemaIfRequested prints the attrs of t when --schema is set, and
// returns true if it handled the request.
func DumpSchemaIfRequested(cmd *cli.Command, t reflect.Type) bool {
	if cmd.Bool("schema") {
		output.DumpSchema(writer(cmd), t)
		return true
	}
	return false
}

// BuildAttrs constructs an AttrList with defaults and optional extras from
// --attrs, then applies the global transform spec.
func BuildAttrs(cmd *cli.Command, defaults ...string) (attrs.AttrList, error) {
	var al attrs.AttrList
	for _, d := range defaults {
		if err := al.Set(d); err != nil {
			return nil, err
		}
	}
	if extras := cmd.String("attrs"); extras != "" {
		if err := al.Set(extras); err != nil {
			return nil, fmt.Errorf("--attrs: %w", err)
		}
	}
	al.SetGlobalTransformSpec()
	return al, nil
}

// EmitJSONAPI marshals results, a struct pointer or a slice of them, as a
// JSONAPI document and passes it to the common output routine.
func EmitJSONAPI(results any, al attrs.AttrList, cmd *cli.Command) error {
	var raw bytes.Buffer
	if err := jsonapi.MarshalPayload(&raw, results); err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	return output.SliceDiceSpit(raw, al, output.OptionsFromCommand(cmd), "data", writer(cmd))
}

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// writer is where a command's results go. Tests swap the root's Writer.
func writer(cmd *cli.Command) io.Writer {
	if cmd != nil {
		if root := cmd.Root(); root != nil && root.Writer != nil {
			return root.Writer
		}
	}
	return os.Stdout
}

// QueryCommandBuilder constructs a cli.Command for the content query
// subcommands (aq, stq, cq) using a consistent pattern: metadata, tldr and
// schema flags, output flags, backend flags and the shared validator.
type QueryCommandBuilder struct {
	Name      string
	Usage     string
	UsageText string
	ArgsUsage string
	Flags     []cli.Flag
	Action    func(context.Context, *cli.Command) error
	Meta      meta.Meta
}

// Build returns a configured cli.Command from the builder.
func (qcb *QueryCommandBuilder) Build() *cli.Command {
	flags := append([]cli.Flag{}, qcb.Flags...)
	flags = append(flags, tldrFlag, schemaFlag)
	flags = append(flags, NewGlobalFlags(qcb.Name)...)
	flags = append(flags, NewBackendFlags(qcb.Name)...)

	return &cli.Command{
		Name:      qcb.Name,
		Usage:     qcb.Usage,
		UsageText: qcb.UsageText,
		ArgsUsage: qcb.ArgsUsage,
		Metadata: map[string]any{
			"meta": qcb.Meta,
		},
		Flags: flags,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, c)
		},
		Action: qcb.Action,
	}
}

// QueryActionRunner[T] encapsulates the common query action pattern. It
// handles the tldr and schema short circuits, attr building and output, with
// the data fetching provided by FetchFn.
type QueryActionRunner[T any] struct {
	CommandName  string
	SchemaType   reflect.Type
	DefaultAttrs []string
	FetchFn      func(context.Context, *cli.Command, *loader.Loader) ([]T, error)
}

// Run executes the query action with the provided context and command.
func (qar *QueryActionRunner[T]) Run(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	if len(m.Args) > 1 {
		log.Debugf("Executing action for %v", m.Args[1:])
	}

	if ShortCircuitTLDR(ctx, cmd, qar.CommandName) {
		return nil
	}
	if DumpSchemaIfRequested(cmd, qar.SchemaType) {
		return nil
	}

	al, err := BuildAttrs(cmd, qar.DefaultAttrs...)
	if err != nil {
		return err
	}
	log.Debugf("attrs: %v", al.String())

	l, closeFn, err := InitLoader(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	results, err := qar.FetchFn(ctx, cmd, l)
	if err != nil {
		return err
	}

	return EmitJSONAPI(results, al, cmd)
}

// InitBackend builds the backend selected by the command's flags. The
// returned func releases it.
func InitBackend(ctx context.Context, cmd *cli.Command) (backend.Backend, func(), error) {
	be, err := backend.NewBackend(ctx, cmd)
	if err != nil {
		return nil, nil, err
	}
	log.Debugf("be: %v", be)

	closeFn := func() {}
	if c, ok := be.(io.Closer); ok {
		closeFn = func() {
			if err := c.Close(); err != nil {
				log.WithError(err).Warn("failed to close backend")
			}
		}
	}
	return be, closeFn, nil
}

// InitLoader wraps the command's backend in a loader over a fresh cache.
func InitLoader(ctx context.Context, cmd *cli.Command) (*loader.Loader, func(), error) {
	be, closeFn, err := InitBackend(ctx, cmd)
	if err != nil {
		return nil, nil, err
	}
	return loader.New(be, nil), closeFn, nil
}

// requireArg returns the first positional argument or a usage error naming
// it.
func requireArg(cmd *cli.Command, name string) (string, error) {
	arg := cmd.Args().First()
	if err := NonEmptyValidator(arg); err != nil {
		return "", fmt.Errorf("%s %s", name, err)
	}
	return arg, nil
}
