package main

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/cyraxred/repograph/internal/config"
)

// rootCmd is the base command; ingest/serve/export are registered on it
// in their own files' init().
var rootCmd = &cobra.Command{
	Use:   "repograph",
	Short: "Ingest a Git repository's history into a property graph.",
	Long: `repograph walks a Git repository's commit history and projects it onto a
property graph (repo, branch, commit, contributor, file, symbol, module and
dependency nodes) stored in a Bolt-speaking graph database. It can be driven
as a one-shot CLI walk (ingest) or as a long-running HTTP trigger service
(serve).`,
	SilenceUsage: true,
}

var appViper = viper.New()

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("memgraph-uri", "", "Bolt URI of the graph store (overrides MEMGRAPH_HOST/PORT)")
	flags.String("backend-mode", "", "online or offline status reporting")
	flags.String("backend-url", "", "backend base URL used when backend-mode=online")
	flags.String("offline-out-dir", "", "directory for offline status files")
	flags.String("anomaly-tz", "", "IANA timezone used for commit-hour anomaly scoring")
	flags.Int("walk-workers", 0, "bounded worker pool size for per-file extraction")
	flags.Int("walk-max-commits", 0, "cap on commits ingested per run, 0 for unbounded")
	flags.Bool("shallow-clone", false, "allow shallow clones when fetching remote URIs")
	flags.String("log-file", "", "optional path to write rotated log output to instead of stderr")

	for _, name := range []string{
		"memgraph-uri", "backend-mode", "backend-url", "offline-out-dir",
		"anomaly-tz", "walk-workers", "walk-max-commits", "shallow-clone",
	} {
		if err := appViper.BindPFlag(toConfigKey(name), flags.Lookup(name)); err != nil {
			panic(err)
		}
	}
}

func toConfigKey(flagName string) string {
	key := ""
	for _, r := range flagName {
		if r == '-' {
			key += "_"
			continue
		}
		key += string(r)
	}
	return key
}

// loadConfig resolves the effective Config for this invocation: flags
// override environment, environment overrides the documented defaults.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	return config.Load(appViper)
}

func newLogger(cmd *cobra.Command) logrus.FieldLogger {
	logFile, _ := cmd.Flags().GetString("log-file")
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if logFile != "" {
		l.SetOutput(&lumberjack.Logger{Filename: logFile, MaxSize: 50, MaxBackups: 5, MaxAge: 28})
	}
	return l
}

func anomalyLocation(tz string) *time.Location {
	if tz == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.UTC
	}
	return loc
}
