package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"minichat/pkg/logger"
	"minichat/pkg/store"
)

// Offline peek at a message log. Opens the store directly, so run it
// against a stopped server or a copy of the data directory.
func main() {
	var data string
	var backend string
	var asJSON bool
	flag.StringVar(&data, "data", "", "data directory (the one passed to the server via --data)")
	flag.StringVar(&backend, "backend", "file", "storage backend: file or pebble")
	flag.BoolVar(&asJSON, "json", false, "print messages as a JSON array")
	flag.Parse()
	if data == "" {
		fmt.Fprintln(os.Stderr, "--data required")
		os.Exit(2)
	}

	logger.Init()

	st, err := store.Open(backend, filepath.Join(data, "store"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "open store: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	msgs, err := st.List()
	if err != nil {
		fmt.Fprintf(os.Stderr, "list messages: %v\n", err)
		os.Exit(1)
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(msgs); err != nil {
			fmt.Fprintf(os.Stderr, "encode: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Printf("backend=%s messages=%d\n", backend, len(msgs))
	for _, m := range msgs {
		fmt.Printf("%s  %-5s  %-16s  %s\n", m.Timestamp.Format("2006-01-02 15:04:05"), m.Type, m.Sender, m.Content)
	}
}
