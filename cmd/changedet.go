package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/gisdiff/changedet/pkg/diff"
	"github.com/gisdiff/changedet/pkg/domain"
	"github.com/gisdiff/changedet/pkg/geojson"
	"github.com/gisdiff/changedet/pkg/hashkey"
	"github.com/gisdiff/changedet/pkg/server"
	"github.com/gisdiff/changedet/pkg/storage"
)

func main() {
	// Command line flags
	var (
		fileA        = flag.String("a", "", "Path to the first (earlier) GeoJSON source")
		fileB        = flag.String("b", "", "Path to the second (current) GeoJSON source")
		primaryKey   = flag.String("pk", "", "Primary key column(s), comma separated")
		fields       = flag.String("fields", "", "Fields to compare, comma separated (default: all common fields)")
		ignoreFields = flag.String("ignore-fields", "", "Fields to exclude from comparison, comma separated")
		hashFields   = flag.String("hash-fields", "", "Extra fields to include when hashing a surrogate key")
		hashKeyField = flag.String("hash-key", "hash_key", "Name of the derived surrogate key column")
		precision    = flag.Float64("precision", 0.01, "Geometry comparison precision in project units")
		suffixA      = flag.String("suffix-a", "a", "Label for the first source")
		suffixB      = flag.String("suffix-b", "b", "Label for the second source")
		dropNullGeom = flag.Bool("drop-null-geometry", true, "Drop records with null geometry when hashing geometries")
		crs          = flag.String("crs", "", "CRS code of the sources (default: EPSG:4326)")
		geographic   = flag.Bool("geographic", false, "Whether the declared CRS is degree-based")
		outFile      = flag.String("out", "", "Output snapshot file (default: changedetector_YYYYMMDD_HHMM"+storage.FileExtension+")")
		dumpInputs   = flag.Bool("dump-inputs", false, "Also write both source datasets to the snapshot")
		serveAddr    = flag.String("serve", "", "Run as an HTTP service on this address instead (e.g. :8080)")
		showHelp     = flag.Bool("help", false, "Show help message")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nchangedet detects and classifies differences between two versions of a dataset.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -a old.geojson -b new.geojson -pk station_id\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -a old.geojson -b new.geojson            # no key: hash geometries\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -a old.geojson -b new.geojson -pk region,station  # multi-column key\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -serve :8080                              # run the HTTP service\n", os.Args[0])
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *serveAddr != "" {
		runServer(logger, *serveAddr)
		return
	}

	if *fileA == "" || *fileB == "" {
		flag.Usage()
		os.Exit(2)
	}

	var loadOptions []geojson.Option
	if *crs != "" {
		loadOptions = append(loadOptions, geojson.WithCRS(*crs, *geographic))
	}

	dsA, err := geojson.Load(*fileA, loadOptions...)
	if err != nil {
		logger.Fatal("failed to load source", zap.String("path", *fileA), zap.Error(err))
	}
	dsB, err := geojson.Load(*fileB, loadOptions...)
	if err != nil {
		logger.Fatal("failed to load source", zap.String("path", *fileB), zap.Error(err))
	}
	dsA.Name = "source_" + *suffixA
	dsB.Name = "source_" + *suffixB

	// mixed singlepart/multipart sources cannot be compared as-is
	if dsA.MixedMulti() || dsB.MixedMulti() {
		logger.Info("mixed singlepart/multipart geometries found, promoting all to multipart")
		dsA = dsA.PromoteToMulti()
		dsB = dsB.PromoteToMulti()
	}

	pkFields := splitList(*primaryKey)
	extraHashFields := splitList(*hashFields)
	compareFields := splitList(*fields)
	ignored := splitList(*ignoreFields)

	// resolve the primary key question: an explicit key disables geometry
	// hashing; no key at all means both sources must be spatial
	hashGeometry := false
	if len(pkFields) > 0 {
		if len(extraHashFields) > 0 {
			logger.Warn("using supplied primary key and ignoring supplied hash fields",
				zap.Strings("primary_key", pkFields), zap.Strings("hash_fields", extraHashFields))
			extraHashFields = nil
		}
	} else {
		logger.Warn("no primary key supplied, attempting to hash on geometries")
		if !dsA.Spatial() || !dsB.Spatial() {
			logger.Fatal("cannot compare the datasets - if no primary key is available, " +
				"geometries must be present in both source datasets")
		}
		hashGeometry = true
	}

	// fail fast if requested fields are missing; absent ignore fields only warn
	for _, ds := range []*domain.Dataset{dsA, dsB} {
		for _, f := range append(append(append([]string{}, compareFields...), extraHashFields...), pkFields...) {
			if !ds.Schema.HasField(f) {
				logger.Fatal("field is not present in source", zap.String("field", f), zap.String("source", ds.Name))
			}
		}
		for _, f := range ignored {
			if !ds.Schema.HasField(f) {
				logger.Warn("field is not present in source, nothing to ignore",
					zap.String("field", f), zap.String("source", ds.Name))
			}
		}
	}

	// hash multi column primary keys (without geometry) for simplicity;
	// hash with geometry if no primary key was given
	pk := ""
	dump := *dumpInputs
	if hashGeometry || len(pkFields) > 1 {
		deriver := hashkey.NewDeriver(hashkey.WithLogger(logger))
		cfg := hashkey.KeyConfig{
			Fields:           append(append([]string{}, pkFields...), extraHashFields...),
			HashGeometry:     hashGeometry,
			DropNullGeometry: *dropNullGeom,
			Precision:        *precision,
		}
		logger.Info("adding hashed key to sources", zap.String("field", *hashKeyField))
		if dsA, err = deriver.AddHashKey(dsA, *hashKeyField, cfg); err != nil {
			logger.Fatal("failed to derive key", zap.String("source", dsA.Name), zap.Error(err))
		}
		if dsB, err = deriver.AddHashKey(dsB, *hashKeyField, cfg); err != nil {
			logger.Fatal("failed to derive key", zap.String("source", dsB.Name), zap.Error(err))
		}
		pk = *hashKeyField
		dump = true
	} else {
		pk = pkFields[0]
	}

	differ := diff.NewDiffer(
		diff.WithLogger(logger),
		diff.WithPrecision(*precision),
		diff.WithLabels(*suffixA, *suffixB),
	)
	result, err := differ.Diff(dsA, dsB, pk, compareFields, ignored)
	if err != nil {
		logger.Fatal("comparison failed", zap.Error(err))
	}

	out := *outFile
	if out == "" {
		out = "changedetector_" + time.Now().Format("20060102_1504") + storage.FileExtension
	}
	if _, err := os.Stat(out); err == nil {
		logger.Warn("output file exists, overwriting", zap.String("path", out))
		os.Remove(out)
	}

	// write the non-empty change buckets; UNCHANGED stays implicit
	var layers []*domain.Dataset
	for _, bucket := range result.Buckets() {
		if bucket.Name == diff.BucketUnchanged {
			continue
		}
		logger.Info("bucket", zap.String("name", bucket.Name), zap.Int("records", len(bucket.Records)))
		if len(bucket.Records) > 0 {
			layers = append(layers, bucket)
		}
	}
	if dump && len(layers) > 0 {
		logger.Info("writing source data with derived keys", zap.String("path", out))
		layers = append(layers, dsA, dsB)
	}

	if len(layers) == 0 {
		logger.Info("no changes detected, nothing to write")
		return
	}
	if err := storage.Save(out, layers...); err != nil {
		logger.Fatal("failed to write output", zap.String("path", out), zap.Error(err))
	}
	logger.Info("wrote diff snapshot", zap.String("path", out), zap.Int("layers", len(layers)))
}

// runServer starts the HTTP service and blocks until interrupted
func runServer(logger *zap.Logger, addr string) {
	srv := server.NewServer(server.WithLogger(logger))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv.Router(),
	}

	go func() {
		logger.Info("starting changedet server", zap.String("addr", addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}

// splitList splits a comma separated flag value, dropping empty entries
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
