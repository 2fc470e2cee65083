// Package main provides the seccsctl CLI for the chunk-tree content store.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"

	"github.com/luxfi/seccs/chunktree"
	"github.com/luxfi/seccs/codec"
	"github.com/luxfi/seccs/config"
	"github.com/luxfi/seccs/store"
	"github.com/luxfi/seccs/wrapper"
)

func main() {
	var (
		dbDir     = flag.String("db", "seccs.db", "Pebble data directory")
		manifest  = flag.String("manifest", "seccs.manifest.json", "Name-to-handle manifest file")
		chunkSize = flag.Int64("chunk-size", config.DefaultChunks, "Target average chunk size in bytes")
		keyHex    = flag.String("key", "", "Hex-encoded HMAC key (defaults to an insecure fixed dev key)")
		help      = flag.Bool("help", false, "Show help message")
	)
	flag.Parse()
	args := flag.Args()

	if *help || len(args) == 0 {
		printHelp()
		if *help {
			os.Exit(0)
		}
		os.Exit(1)
	}

	cw, err := openWrapper(*keyHex)
	if err != nil {
		fatalf("wrapper: %v", err)
	}
	cfg, err := config.New(*chunkSize, cw.DigestSize())
	if err != nil {
		fatalf("config: %v", err)
	}
	backend, err := store.NewPebble(*dbDir)
	if err != nil {
		fatalf("open backend: %v", err)
	}
	defer backend.Close()

	e, err := chunktree.New(cfg, backend, cw)
	if err != nil {
		fatalf("engine: %v", err)
	}

	man, err := loadManifest(*manifest)
	if err != nil {
		fatalf("manifest: %v", err)
	}

	switch args[0] {
	case "put":
		runPut(e, man, *manifest, args[1:])
	case "get":
		runGet(e, man, args[1:])
	case "delete":
		runDelete(e, man, *manifest, args[1:])
	case "ls":
		runList(man)
	default:
		fmt.Fprintf(os.Stderr, "unknown subcommand: %s\n", args[0])
		printHelp()
		os.Exit(1)
	}
}

func openWrapper(keyHex string) (wrapper.CryptoWrapper, error) {
	key := []byte("insecure-seccsctl-development-key-only")
	if keyHex != "" {
		decoded, err := hex.DecodeString(keyHex)
		if err != nil {
			return nil, err
		}
		key = decoded
	}
	return wrapper.NewHMACSHA256DR(key), nil
}

func runPut(e *chunktree.Engine, man *manifest, manifestPath string, args []string) {
	if len(args) != 2 {
		fatalf("usage: seccsctl put <name> <file>")
	}
	name, path := args[0], args[1]
	data, err := os.ReadFile(path)
	if err != nil {
		fatalf("read %s: %v", path, err)
	}
	hdl, err := e.PutContent(data, false)
	if err != nil {
		fatalf("put: %v", err)
	}
	man.Entries[name] = fmt.Sprintf("%x", hdl)
	if err := saveManifest(manifestPath, man); err != nil {
		fatalf("save manifest: %v", err)
	}
	fmt.Printf("%s -> %x\n", name, hdl)
}

func runGet(e *chunktree.Engine, man *manifest, args []string) {
	if len(args) != 1 {
		fatalf("usage: seccsctl get <name>")
	}
	hdl, ok := man.lookup(args[0])
	if !ok {
		fatalf("no such name: %s", args[0])
	}
	data, err := e.GetContent(hdl)
	if err != nil {
		fatalf("get: %v", err)
	}
	os.Stdout.Write(data)
}

func runDelete(e *chunktree.Engine, man *manifest, manifestPath string, args []string) {
	if len(args) != 1 {
		fatalf("usage: seccsctl delete <name>")
	}
	hdl, ok := man.lookup(args[0])
	if !ok {
		fatalf("no such name: %s", args[0])
	}
	if err := e.DeleteContent(hdl, false); err != nil {
		fatalf("delete: %v", err)
	}
	delete(man.Entries, args[0])
	if err := saveManifest(manifestPath, man); err != nil {
		fatalf("save manifest: %v", err)
	}
	fmt.Printf("deleted %s\n", args[0])
}

func runList(man *manifest) {
	for name, hexHandle := range man.Entries {
		fmt.Printf("%s\t%s\n", name, hexHandle)
	}
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func printHelp() {
	fmt.Println("seccsctl: a small wrapper around the chunk-tree content store")
	fmt.Println("\nUsage: seccsctl [options] <subcommand> [args]")
	fmt.Println("\nSubcommands:")
	fmt.Println("  put <name> <file>   store a file's content under a manifest name")
	fmt.Println("  get <name>          print stored content to stdout")
	fmt.Println("  delete <name>       drop a manifest entry and its reference")
	fmt.Println("  ls                  list manifest entries")
	fmt.Println("\nOptions:")
	flag.PrintDefaults()
}

// manifest is the small JSON-shaped name-to-handle index seccsctl keeps next
// to the pebble data directory; handles themselves are opaque hex strings.
type manifest struct {
	Entries map[string]string `json:"entries"`
}

func (m *manifest) lookup(name string) ([]byte, bool) {
	hexHandle, ok := m.Entries[name]
	if !ok {
		return nil, false
	}
	raw, err := hex.DecodeString(hexHandle)
	if err != nil {
		return nil, false
	}
	return raw, true
}

func loadManifest(path string) (*manifest, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &manifest{Entries: map[string]string{}}, nil
	}
	if err != nil {
		return nil, err
	}
	m := &manifest{}
	if _, err := codec.Codec.Unmarshal(data, m); err != nil {
		return nil, err
	}
	if m.Entries == nil {
		m.Entries = map[string]string{}
	}
	return m, nil
}

func saveManifest(path string, m *manifest) error {
	data, err := codec.Codec.Marshal(codec.CurrentVersion, m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
