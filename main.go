package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/example/kobot/internal/config"
	"github.com/example/kobot/internal/curriculum"
	"github.com/example/kobot/internal/history"
	"github.com/example/kobot/internal/logger"
	"github.com/example/kobot/internal/mastery"
	"github.com/example/kobot/internal/planner"
	"github.com/example/kobot/internal/profile"
	"github.com/example/kobot/internal/scheduler"
	"github.com/example/kobot/internal/session"
	"github.com/example/kobot/internal/spaced_repetition"
	"github.com/example/kobot/internal/vocabulary"
	"github.com/example/kobot/pkg/models"
)

func main() {
	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cmd := flag.Arg(0)
	if cmd == "" {
		usage()
		os.Exit(2)
	}

	app := newApp(cfg, log)
	var runErr error
	switch cmd {
	case "plan":
		runErr = app.runPlan()
	case "apply":
		runErr = app.runApply(flag.Args()[1:])
	case "import-vocab":
		runErr = app.runImportVocab(flag.Args()[1:])
	case "stats":
		runErr = app.runStats()
	case "remind":
		runErr = app.runRemind()
	default:
		usage()
		os.Exit(2)
	}
	if runErr != nil {
		log.Error("command failed", "command", cmd, "error", runErr)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: kobot [-config config.yaml] <command>

commands:
  plan                      print today's review/new-item selection
  apply -f outcomes.json    apply evaluated exercise outcomes to the profile
  import-vocab -f words.xlsx  import a vocabulary spreadsheet (xlsx or csv)
  stats                     print mastery summary and session history stats
  remind                    run the hourly due-review reminder loop`)
}

// app holds the wired components shared by all commands.
type app struct {
	cfg        config.Config
	log        *logger.Logger
	engine     *spaced_repetition.Engine
	classifier *mastery.Classifier
	store      *profile.Store
	planner    *planner.Planner
}

func newApp(cfg config.Config, log *logger.Logger) *app {
	engine := spaced_repetition.New()
	classifier := mastery.NewClassifier(mastery.DefaultThresholds())
	gate := planner.NewGate(planner.DefaultGateConfig(), classifier)
	return &app{
		cfg:        cfg,
		log:        log,
		engine:     engine,
		classifier: classifier,
		store:      profile.NewStore(cfg.ProfilePath, engine, log),
		planner:    planner.New(planner.DefaultConfig(), gate, log),
	}
}

func (a *app) sessionManager() (*session.Manager, func(), error) {
	cur, err := curriculum.Load(a.cfg.CurriculumPath, a.log)
	if err != nil {
		return nil, nil, err
	}
	vocab, err := vocabulary.NewManager(a.cfg.VocabularyPath, a.log)
	if err != nil {
		return nil, nil, err
	}

	db, err := history.Connect(history.Options{
		Type: a.cfg.Database.Type,
		Path: a.cfg.Database.Path,
		DSN:  a.cfg.Database.DSN,
	})
	if err != nil {
		return nil, nil, err
	}
	repo := history.NewRepository(db)

	m := session.NewManager(a.store, a.engine, a.classifier, a.planner, cur, vocab, repo, a.log)
	return m, func() { db.Close() }, nil
}

func (a *app) runPlan() error {
	m, closeDB, err := a.sessionManager()
	if err != nil {
		return err
	}
	defer closeDB()

	sess, err := m.Start(a.cfg.UserID, models.Today())
	if err != nil {
		return err
	}
	return printJSON(sess.Selection)
}

func (a *app) runApply(args []string) error {
	fs := flag.NewFlagSet("apply", flag.ExitOnError)
	file := fs.String("f", "", "JSON file with evaluated exercise outcomes")
	fs.Parse(args)
	if *file == "" {
		return fmt.Errorf("apply requires -f outcomes.json")
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		return fmt.Errorf("failed to read outcomes file: %w", err)
	}
	var outcomes []models.ExerciseOutcome
	if err := json.Unmarshal(data, &outcomes); err != nil {
		return fmt.Errorf("failed to parse outcomes file: %w", err)
	}

	m, closeDB, err := a.sessionManager()
	if err != nil {
		return err
	}
	defer closeDB()

	sess, err := m.Start(a.cfg.UserID, models.Today())
	if err != nil {
		return err
	}
	for _, o := range outcomes {
		m.RecordOutcome(sess, o)
	}
	summary, err := m.End(sess)
	if err != nil {
		return err
	}
	return printJSON(summary)
}

func (a *app) runImportVocab(args []string) error {
	fs := flag.NewFlagSet("import-vocab", flag.ExitOnError)
	file := fs.String("f", "", "xlsx or csv file to import")
	sheet := fs.String("sheet", "Sheet1", "sheet name for xlsx files")
	fs.Parse(args)
	if *file == "" {
		return fmt.Errorf("import-vocab requires -f words.xlsx")
	}

	vocab, err := vocabulary.NewManager(a.cfg.VocabularyPath, a.log)
	if err != nil {
		return err
	}
	importCfg := vocabulary.DefaultImportConfig()
	importCfg.FilePath = *file
	importCfg.SheetName = *sheet
	result, err := vocab.Import(importCfg)
	if err != nil {
		return err
	}
	return printJSON(result)
}

func (a *app) runStats() error {
	p, err := a.store.Load(a.cfg.UserID, models.Today())
	if err != nil {
		return err
	}

	db, err := history.Connect(history.Options{
		Type: a.cfg.Database.Type,
		Path: a.cfg.Database.Path,
		DSN:  a.cfg.Database.DSN,
	})
	if err != nil {
		return err
	}
	defer db.Close()
	repo := history.NewRepository(db)

	historyStats, err := repo.Stats(p.UserID)
	if err != nil {
		return err
	}
	return printJSON(map[string]interface{}{
		"items":   a.classifier.Summarize(p),
		"history": historyStats,
	})
}

func (a *app) runRemind() error {
	sched := scheduler.New(
		a.store,
		logNotifier{a.log},
		a.cfg.UserID,
		a.cfg.Notifications.StartHour,
		a.cfg.Notifications.EndHour,
		a.log,
	)
	sched.Start()
	defer sched.Stop()
	a.log.Info("reminder loop running, press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	a.log.Info("shutting down", "signal", sig.String())
	return nil
}

// logNotifier writes reminders to the log. A push channel can replace it
// without touching the scheduler.
type logNotifier struct {
	log *logger.Logger
}

func (n logNotifier) SendReminder(userID string, dueGrammar, dueVocab int) error {
	n.log.Info("reviews due",
		"user", userID,
		"grammar", dueGrammar,
		"vocabulary", dueVocab)
	return nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
