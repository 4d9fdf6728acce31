package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"ziwei/internal/chart"
	"ziwei/internal/grpcserver"
	"ziwei/internal/kb"
	"ziwei/internal/render"
	"ziwei/internal/session"
	"ziwei/internal/timeslot"
	"ziwei/pkg/logger"
	"ziwei/pkg/models"
	"ziwei/pkg/utils"
)

// app holds what every subcommand needs once the root flags are parsed.
type app struct {
	cfgFile string
	remote  string

	cfg   utils.Config
	kb    *kb.Store
	svc   grpcserver.ChartServiceServer
	close func()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{close: func() {}}
	root := &cobra.Command{
		Use:          "ziwei",
		Short:        "Zi Wei Dou Shu charts with the 2026 annual overlay",
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.setup()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			a.close()
			logger.Sync()
		},
	}
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default ./ziwei.yaml or ~/.ziwei/ziwei.yaml)")
	root.PersistentFlags().StringVar(&a.remote, "remote", "", "gRPC server address; charts are computed locally when empty")

	root.AddCommand(
		newChartCmd(a),
		newPalaceCmd(a),
		newExportCmd(a),
		newInspectCmd(),
		newReadingsCmd(a),
	)
	return root
}

func (a *app) setup() error {
	cfg, err := utils.Load(a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg
	if err := logger.Initialize(false, cfg.Log.Level); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	a.kb, err = kb.Open(cfg.KBPath)
	if err != nil {
		return fmt.Errorf("load knowledge base: %w", err)
	}

	if a.remote != "" {
		conn, err := grpc.NewClient(a.remote, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			return fmt.Errorf("dial %s: %w", a.remote, err)
		}
		a.svc = remote{grpcserver.NewClient(conn)}
		a.close = func() { _ = conn.Close() }
		return nil
	}

	provider, err := chart.FromConfig(cfg.Provider)
	if err != nil {
		return err
	}
	a.svc = grpcserver.NewServer(provider, a.kb, session.Options{
		Locale:  cfg.Provider.Locale,
		FixLeap: cfg.Provider.FixLeap,
		MinYear: cfg.Form.MinYear,
		MaxYear: cfg.Form.MaxYear,
	})
	return nil
}

// remote adapts the gRPC client to the server interface so commands do not
// care where the chart is computed.
type remote struct {
	c *grpcserver.Client
}

func (r remote) Compute(ctx context.Context, in *grpcserver.ComputeRequest) (*grpcserver.ComputeResponse, error) {
	return r.c.Compute(ctx, in)
}

func (r remote) Palace(ctx context.Context, in *grpcserver.PalaceRequest) (*render.Panel, error) {
	return r.c.Palace(ctx, in)
}

func (r remote) Export(ctx context.Context, in *grpcserver.ComputeRequest) (*grpcserver.ExportResponse, error) {
	return r.c.Export(ctx, in)
}

// birthFlags are the birth-data flags shared by chart, palace and export.
type birthFlags struct {
	date     string
	clock    string
	branch   string
	zi       string
	gender   string
	calendar string
	leap     bool
}

func (b *birthFlags) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&b.date, "date", "d", "", "birth date YYYY-MM-DD (required)")
	f.StringVarP(&b.clock, "time", "t", "", "birth time HH:MM (default 12:00)")
	f.StringVar(&b.branch, "branch", "", "birth hour as an earthly branch, e.g. 子")
	f.StringVar(&b.zi, "zi", "", "for 子 hour: early or late")
	f.StringVarP(&b.gender, "gender", "g", "male", "male or female")
	f.StringVar(&b.calendar, "calendar", "gregorian", "gregorian or lunar")
	f.BoolVar(&b.leap, "leap", false, "lunar leap month")
}

func (b birthFlags) input() (models.BirthInput, error) {
	cal := models.Calendar(strings.ToLower(strings.TrimSpace(b.calendar)))
	in := models.BirthInput{
		Calendar:  cal,
		LeapMonth: b.leap,
		Time:      b.clock,
		Branch:    b.branch,
		ZiChoice:  b.zi,
		Gender:    models.Gender(strings.ToLower(strings.TrimSpace(b.gender))),
	}
	if strings.TrimSpace(b.date) == "" {
		return in, fmt.Errorf("--date is required")
	}
	y, m, d, err := timeslot.ParseDate(cal, b.date)
	if err != nil {
		return in, err
	}
	in.Year, in.Month, in.Day = y, m, d
	return in, nil
}
