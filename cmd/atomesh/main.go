package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/ayusman/atomesh/internal/app"
	"github.com/ayusman/atomesh/internal/capture"
	"github.com/ayusman/atomesh/internal/config"
	"github.com/ayusman/atomesh/internal/detector"
	"github.com/ayusman/atomesh/internal/hook"
	"github.com/ayusman/atomesh/internal/server"
	"github.com/ayusman/atomesh/internal/store"
	"github.com/ayusman/atomesh/internal/termview"
	"github.com/ayusman/atomesh/internal/tray"
)

var (
	configFile string
	dataDir    string
	preset     string
	cameraID   int
	addr       string
	withTray   bool
	simulate   bool
	basePreset string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "atomesh",
		Short: "gesture-driven atomic mesh",
		RunE:  runServe,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", defaultDataDir(), "data directory")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "tunables preset (built-in or saved)")
	rootCmd.PersistentFlags().IntVar(&cameraID, "camera", -1, "camera device id (overrides config)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "track the hand and serve the viewer over HTTP",
		RunE:  runServe,
	}
	for _, cmd := range []*cobra.Command{rootCmd, serveCmd} {
		cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
		cmd.Flags().BoolVar(&withTray, "tray", false, "show a system tray menu")
	}

	termCmd := &cobra.Command{
		Use:   "term",
		Short: "render the mesh in the terminal",
		RunE:  runTerm,
	}
	termCmd.Flags().BoolVar(&simulate, "simulate", false, "drive the hand from the keyboard instead of the camera")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "manage tunables presets",
	}

	presetsListCmd := &cobra.Command{
		Use:   "list",
		Short: "list built-in and saved presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	presetsSaveCmd := &cobra.Command{
		Use:   "save [name]",
		Short: "save the current tunables as a preset",
		Args:  cobra.ExactArgs(1),
		RunE:  savePreset,
	}
	presetsSaveCmd.Flags().StringVar(&basePreset, "from", "", "built-in preset to copy instead of the current tunables")

	presetsDeleteCmd := &cobra.Command{
		Use:   "delete [name]",
		Short: "delete a saved preset",
		Args:  cobra.ExactArgs(1),
		RunE:  deletePreset,
	}

	presetsUseCmd := &cobra.Command{
		Use:   "use [name]",
		Short: "make a preset the default for future runs",
		Args:  cobra.ExactArgs(1),
		RunE:  usePreset,
	}

	presetsCmd.AddCommand(presetsListCmd, presetsSaveCmd, presetsDeleteCmd, presetsUseCmd)

	hooksCmd := &cobra.Command{
		Use:   "hooks",
		Short: "list the layout hooks that will run on contract and expand",
		Args:  cobra.NoArgs,
		RunE:  listHooks,
	}

	rootCmd.AddCommand(serveCmd, termCmd, presetsCmd, hooksCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	settings, err := loadSettings(st)
	if err != nil {
		return err
	}
	if addr != "" {
		settings.Addr = addr
	}
	if settings.StaticDir == "" {
		settings.StaticDir = findWebDir()
	}
	if settings.StaticDir != "" {
		log.Printf("Serving static files from: %s", settings.StaticDir)
	}

	a := app.New(app.Config{Settings: settings})
	if err := a.Start(); err != nil {
		log.Printf("Hand tracking unavailable: %s", capture.Message(err))
	}
	defer a.Stop()

	srv := server.New(server.Config{
		StaticDir: settings.StaticDir,
		Store:     st,
		Engine:    a,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on %s", settings.Addr)
		errCh <- srv.Run(ctx, settings.Addr)
	}()

	if withTray {
		runTray(ctx, a, settings, stop)
	} else {
		<-ctx.Done()
	}

	log.Println("Shutting down")
	stop()
	if err := <-errCh; err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// runTray blocks on the tray menu, which must own the main goroutine. Quit
// from the menu cancels the serve context.
func runTray(ctx context.Context, a *app.App, settings *config.Config, quit context.CancelFunc) {
	t := tray.New(tray.Handlers{
		Toggle: a.SetEnabled,
		Layout: func(contract bool) { a.Request(contract) },
		Viewer: func() {
			if err := openBrowser(viewerURL(settings.Addr)); err != nil {
				log.Printf("Failed to open viewer: %v", err)
			}
		},
		Quit: quit,
	})

	frames, unsubscribe := a.Subscribe()
	defer unsubscribe()
	go func() {
		var last string
		var contracted bool
		for f := range frames {
			if f.Status != last || f.Contracted != contracted {
				last, contracted = f.Status, f.Contracted
				t.SetStatus(last, contracted)
			}
		}
	}()

	t.Run(ctx)
}

func runTerm(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	settings, err := loadSettings(st)
	if err != nil {
		return err
	}
	settings.Preview = false

	// The terminal belongs to the viewer; logs go to a file.
	logFile, err := os.OpenFile(filepath.Join(dataDir, "atomesh.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	log.SetOutput(logFile)
	defer log.SetOutput(os.Stderr)

	cfg := app.Config{Settings: settings}
	var sim *termview.Simulator
	if simulate {
		det := detector.NewMockDetector()
		cfg.Camera = capture.NewBlankCamera()
		cfg.Detector = det
		sim = termview.NewSimulator(det)
	}

	a := app.New(cfg)
	if err := a.Start(); err != nil {
		log.Printf("Hand tracking unavailable: %v", err)
	}
	defer a.Stop()

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer screen.Fini()

	v := termview.New(screen, a, settings.Tunables.ParticleColor)
	if sim != nil {
		sim.OnRequest(func(contract bool) { a.Request(contract) })
		v.OnKey(sim.HandleKey, termview.SimulatorHelp)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := v.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	active, _ := st.Settings().Get(store.SettingActivePreset)
	mark := func(name string) string {
		if name == active {
			return "*"
		}
		return ""
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSOURCE\tPARTICLES\tCOOLDOWN\tACTIVE")
	for _, name := range config.ListPresets() {
		t := config.GetPreset(name)
		fmt.Fprintf(w, "%s\tbuilt-in\t%d\t%s\t%s\n", name, t.ParticleCount, t.Cooldown, mark(name))
	}

	saved, err := st.Presets().List()
	if err != nil {
		return err
	}
	for _, p := range saved {
		fmt.Fprintf(w, "%s\tsaved\t%d\t%s\t%s\n", p.Name, p.Tunables.ParticleCount, p.Tunables.Cooldown, mark(p.Name))
	}
	return w.Flush()
}

func savePreset(cmd *cobra.Command, args []string) error {
	name := args[0]
	if config.GetPreset(name) != nil {
		return fmt.Errorf("%q is a built-in preset", name)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	var tunables config.Tunables
	if basePreset != "" {
		base := config.GetPreset(basePreset)
		if base == nil {
			return fmt.Errorf("unknown built-in preset %q", basePreset)
		}
		tunables = *base
	} else {
		settings, err := loadSettings(st)
		if err != nil {
			return err
		}
		tunables = settings.Tunables
	}

	p, err := st.Presets().Save(name, tunables)
	if err != nil {
		return err
	}
	fmt.Printf("saved preset %s (%s)\n", p.Name, p.ID)
	return nil
}

func deletePreset(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	p, err := st.Presets().GetByName(args[0])
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no saved preset named %q", args[0])
		}
		return err
	}
	if err := st.Presets().Delete(p.ID); err != nil {
		return err
	}

	if active, err := st.Settings().Get(store.SettingActivePreset); err == nil && active == p.Name {
		if err := st.Settings().Delete(store.SettingActivePreset); err != nil {
			return err
		}
	}
	fmt.Printf("deleted preset %s\n", p.Name)
	return nil
}

func usePreset(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if _, err := resolvePreset(st, args[0]); err != nil {
		return err
	}
	if err := st.Settings().Set(store.SettingActivePreset, args[0]); err != nil {
		return err
	}
	fmt.Printf("using preset %s\n", args[0])
	return nil
}

func listHooks(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	settings, err := loadSettings(st)
	if err != nil {
		return err
	}

	m := hook.NewManager(settings.HookDir)
	if err := m.Discover(); err != nil {
		return err
	}

	hooks := m.List()
	if len(hooks) == 0 {
		fmt.Printf("No hooks in %s\n", m.Dir())
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tEVENTS\tEXECUTABLE\tDESCRIPTION")
	for _, h := range hooks {
		events := "all"
		if len(h.Manifest.Events) > 0 {
			events = strings.Join(h.Manifest.Events, ",")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", h.Manifest.Name, events, h.Executable, h.Manifest.Description)
	}
	return w.Flush()
}
