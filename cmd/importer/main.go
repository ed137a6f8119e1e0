package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"dealership/internal/config"
	"dealership/internal/db"
	"dealership/internal/importer"
	"dealership/internal/repository/accessory"
	"dealership/internal/repository/option"
	"dealership/internal/repository/variant"
)

func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "", "Path to catalog CSV (type column: variant, option or accessory)")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.FromEnv()
	logger := log.New(os.Stderr, "[importer] ", log.LstdFlags|log.LUTC)
	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.DBConnString, db.Options{})
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	f, err := os.Open(filePath)
	if err != nil {
		logger.Fatalf("open file: %v", err)
	}
	defer f.Close()

	imp := importer.NewCSVImporter(f, importer.Writers{
		Variants:    variant.NewPostgres(pool, logger),
		Options:     option.NewPostgres(pool, logger),
		Accessories: accessory.NewPostgres(pool, logger),
	})

	start := time.Now()
	res, err := imp.Run(ctx)
	if err != nil {
		logger.Fatalf("import failed after %d records: %v", res.Total(), err)
	}

	fmt.Printf("Imported %d variants, %d options, %d accessories in %s\n",
		res.Variants, res.Options, res.Accessories, time.Since(start).Truncate(time.Millisecond))
}
