package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

var corpora = map[string]string{
	"tinyshakespeare.txt": "https://raw.githubusercontent.com/karpathy/char-rnn/master/data/tinyshakespeare/input.txt",
	"alice.txt":           "https://www.gutenberg.org/cache/epub/11/pg11.txt",
}

func download(url, destPath string) (int64, error) {
	resp, err := http.Get(url)
	if err != nil {
		return 0, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("GET %s: unexpected status %s", url, resp.Status)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", destPath, err)
	}
	defer out.Close()

	n, err := io.Copy(out, resp.Body)
	if err != nil {
		return n, fmt.Errorf("write %s: %w", destPath, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("download %s: got 0 bytes", url)
	}

	return n, nil
}

func main() {
	targetDir := flag.String("dir", filepath.Join("testdata", "corpus"), "destination directory")
	flag.Parse()

	logger, _ := zap.NewProduction()
	defer logger.Sync()
	log := logger.Sugar()

	if err := os.MkdirAll(*targetDir, 0o755); err != nil {
		log.Fatalf("mkdir %s: %v", *targetDir, err)
	}

	for name, url := range corpora {
		destPath := filepath.Join(*targetDir, name)
		n, err := download(url, destPath)
		if err != nil {
			log.Fatalw("download failed", "file", name, "error", err)
		}
		log.Infow("downloaded", "file", destPath, "bytes", n)
	}
}
