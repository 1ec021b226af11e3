// Command bestsellers clears the bestseller flag on every product and sets it
// on the named ones. Names come from the arguments or from -file, one per line.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Abhinavraj53/Pujnam-Store/pkg/config"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/logging"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/repository"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/service"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML config file")
	file := flag.String("file", "", "file with one product name per line")
	timeout := flag.Duration("timeout", 30*time.Second, "overall timeout")
	flag.Parse()

	names := flag.Args()
	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open %s: %v\n", *file, err)
			os.Exit(1)
		}
		fromFile, err := readNames(f)
		f.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "read %s: %v\n", *file, err)
			os.Exit(1)
		}
		names = append(names, fromFile...)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	mongo, err := repository.NewMongoRepository(ctx, &cfg.MongoDB)
	if err != nil {
		logger.Fatal("MongoDB connection failed", zap.Error(err))
	}
	defer mongo.Close(context.Background())

	catalog := service.NewCatalogService(repository.NewProductRepository(mongo), repository.NewCategoryRepository(mongo), logger, nil)
	n, err := catalog.MarkBestsellers(ctx, names)
	if err != nil {
		logger.Fatal("Failed to mark bestsellers", zap.Error(err))
	}
	fmt.Printf("Marked %d of %d products as bestsellers\n", n, len(names))
}

// readNames returns the non-blank lines of r, trimmed. Lines starting with
// # are skipped.
func readNames(r io.Reader) ([]string, error) {
	var names []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	return names, sc.Err()
}
