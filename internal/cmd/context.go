package cmd

import (
	"context"
	"io"

	"github.com/jimezsa/imagemail/internal/config"
	"github.com/jimezsa/imagemail/internal/source"
	"github.com/jimezsa/imagemail/internal/ui"
	"github.com/jimezsa/imagemail/internal/workflow"
	"github.com/rs/zerolog"
)

type Context struct {
	In          io.Reader
	Out         io.Writer
	Err         io.Writer
	UI          *ui.UI
	Config      config.Config
	ConfigDir   string
	Logger      zerolog.Logger
	Verbose     bool
	JSONOutput  bool
	PlainText   bool
	Version     string
	ColorMode   ui.ColorMode
	Interactive bool

	// Overridable in tests; nil means the real source and SMTP notifier.
	OpenSource func(ctx context.Context, name string, proxies string) (source.Source, error)
	OpenSender func() (workflow.Sender, error)
}
