package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
	"github.com/rs/zerolog/log"

	"github.com/netauto/configlet-builder/internal/storage"
	"github.com/netauto/configlet-builder/pkg/autodesc"
	"github.com/netauto/configlet-builder/pkg/configlets"
	"github.com/netauto/configlet-builder/pkg/devices"
	"github.com/netauto/configlet-builder/pkg/eventlogger"
	mw "github.com/netauto/configlet-builder/pkg/middleware"
	"github.com/netauto/configlet-builder/pkg/oui"
)

var (
	serveCmd     = flag.NewFlagSet("serve", flag.ExitOnError)
	listenAddr   = serveCmd.String("listen", ":8080", "address to listen on")
	dbPath       = serveCmd.String("db", "", "DuckDB database path (empty for in-memory storage)")
	snapshotDir  = serveCmd.String("snapshot-dir", "snapshots/", "directory for Parquet snapshots")
	snapshotFreq = serveCmd.Duration("snapshot-frequency", time.Hour, "how often to snapshot the database")
	restore      = serveCmd.Bool("restore", false, "restore the most recent snapshot before serving")
	manufURL     = serveCmd.String("manuf-url", oui.DefaultManufURL, "URL of the OUI registration list")
	serveNaming  = serveCmd.String("naming", "short", "interface naming convention for descriptions (short or long)")
	jwtSecret    = serveCmd.String("jwt-secret", "", "HS256 secret protecting mutating routes (empty disables auth)")
	journalDir   = serveCmd.String("journal-dir", "", "directory for the event journal (empty disables it)")

	schemaCmd  = flag.NewFlagSet("schemas", flag.ExitOnError)
	schemaPath = schemaCmd.String("dir", "schemas/", "directory to store JSON schemas")

	buildCmd    = flag.NewFlagSet("build", flag.ExitOnError)
	factsPath   = buildCmd.String("facts", "", "device facts JSON file")
	manufPath   = buildCmd.String("manuf", "", "local manuf file for OUI lookups")
	buildNaming = buildCmd.String("naming", "short", "interface naming convention for descriptions (short or long)")
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("expected 'serve', 'schemas' or 'build' subcommands")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		serveCmd.Parse(os.Args[2:])
		serveAPI()
	case "schemas":
		schemaCmd.Parse(os.Args[2:])
		generateAndWriteSchemas(*schemaPath)
	case "build":
		buildCmd.Parse(os.Args[2:])
		buildOnce()
	default:
		fmt.Println("expected 'serve', 'schemas' or 'build' subcommands")
		os.Exit(1)
	}
}

func namingConvention(s string) autodesc.NamingConvention {
	if s == "long" {
		return autodesc.LongNames
	}
	return autodesc.ShortNames
}

func newStorage() storage.Storage {
	if *dbPath == "" {
		return storage.NewInMemoryStorage()
	}
	options := []storage.DuckDBStorageOption{
		storage.WithSnapshotPath(*snapshotDir),
		storage.WithSnapshotFrequency(*snapshotFreq),
	}
	if *restore {
		options = append(options, storage.WithRestore(*snapshotDir))
	}
	store, err := storage.NewDuckDBStorage(*dbPath, options...)
	if err != nil {
		log.Fatal().Err(err).Msg("Error opening DuckDB storage")
	}
	return store
}

func serveAPI() {
	store := newStorage()
	ouiCache := oui.NewCache(store, oui.WithFetcher(oui.HTTPFetcher(*manufURL, 5*time.Minute)))

	var journal *eventlogger.EventLogger
	if *journalDir != "" {
		config := eventlogger.DefaultConfig()
		config.BaseDir = *journalDir
		var err error
		journal, err = eventlogger.New(config)
		if err != nil {
			log.Fatal().Err(err).Msg("Error opening event journal")
		}
		journal.StartPeriodicFlush()
		defer journal.Stop()
	}

	var tokenAuth *jwtauth.JWTAuth
	if *jwtSecret != "" {
		tokenAuth = jwtauth.New("HS256", []byte(*jwtSecret), nil)
	}

	buildOpts := []autodesc.Option{autodesc.WithNamingConvention(namingConvention(*serveNaming))}
	r := newRouter(store, ouiCache, journal, tokenAuth, buildOpts...)

	log.Info().Str("listen", *listenAddr).Msg("Configlet builder API starting")
	if err := http.ListenAndServe(*listenAddr, r); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}

func newRouter(store storage.Storage, ouiCache *oui.Cache, journal *eventlogger.EventLogger, tokenAuth *jwtauth.JWTAuth, buildOpts ...autodesc.Option) *chi.Mux {
	initDeviceSchema()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(mw.RequestLogger(log.Logger))
	r.Use(middleware.Recoverer)

	protect := func(r chi.Router) chi.Router {
		if tokenAuth == nil {
			return r
		}
		return r.With(jwtauth.Verifier(tokenAuth), mw.AuthenticatorWithRequiredClaims(tokenAuth, []string{"sub"}))
	}

	r.Route("/configlets", func(r chi.Router) {
		r.Get("/", searchConfiglets(store))
		r.Get("/{configletID}", getConfiglet(store))

		p := protect(r)
		p.Post("/", postConfiglet(store))
		p.Put("/{configletID}", updateConfiglet(store))
		p.Delete("/{configletID}", deleteConfiglet(store))
	})

	r.Route("/devices", func(r chi.Router) {
		r.Get("/", searchDevices(store))
		r.Get("/{deviceID}", getDevice(store))

		p := protect(r)
		p.Post("/", postDevice(store))
		p.Put("/{deviceID}", updateDevice(store))
		p.Delete("/{deviceID}", deleteDevice(store))
		p.Post("/{deviceID}/facts", postDeviceFacts(store))
		p.Post("/{deviceID}/discover", discoverDeviceInterfaces(store))
		p.Post("/{deviceID}/autodescription", buildAutoDescription(store, ouiCache, journal, buildOpts...))
	})

	return r
}

// deviceFactsFile is the input format of the build subcommand: device
// inventory plus the raw neighbor-discovery facts to attach to it.
type deviceFactsFile struct {
	devices.Device
	Neighbors map[string][]devices.Neighbor `json:"neighbors,omitempty"`
	MACTable  []devices.MACTableEntry       `json:"mac_table,omitempty"`
}

func buildOnce() {
	if *factsPath == "" {
		fmt.Fprintln(os.Stderr, "build requires -facts")
		os.Exit(1)
	}
	data, err := os.ReadFile(*factsPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error reading facts file")
	}
	var facts deviceFactsFile
	if err := json.Unmarshal(data, &facts); err != nil {
		log.Fatal().Err(err).Msg("Error decoding facts file")
	}

	devices.AttachNeighbors(facts.Interfaces, facts.Neighbors)
	devices.AttachMACTable(facts.Interfaces, facts.MACTable)

	opts := []autodesc.Option{autodesc.WithNamingConvention(namingConvention(*buildNaming))}
	if *manufPath != "" {
		file, err := os.Open(*manufPath)
		if err != nil {
			log.Fatal().Err(err).Msg("Error opening manuf file")
		}
		db, err := oui.ParseManuf(file)
		file.Close()
		if err != nil {
			log.Fatal().Err(err).Msg("Error parsing manuf file")
		}
		opts = append(opts, autodesc.WithMACResolver(db.Lookup))
	}

	configlet, err := configlets.BuildAutoDescription(facts.Device, opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("Error building configlet")
	}
	fmt.Print(configlet.Config)
}
