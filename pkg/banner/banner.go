package banner

import (
	"fmt"
	"net"

	"minichat/pkg/config"
)

const banner = `
███╗   ███╗██╗███╗   ██╗██╗ ██████╗██╗  ██╗ █████╗ ████████╗
████╗ ████║██║████╗  ██║██║██╔════╝██║  ██║██╔══██╗╚══██╔══╝
██╔████╔██║██║██╔██╗ ██║██║██║     ███████║███████║   ██║
██║╚██╔╝██║██║██║╚██╗██║██║██║     ██╔══██║██╔══██║   ██║
██║ ╚═╝ ██║██║██║ ╚████║██║╚██████╗██║  ██║██║  ██║   ██║
╚═╝     ╚═╝╚═╝╚═╝  ╚═══╝╚═╝ ╚═════╝╚═╝  ╚═╝╚═╝  ╚═╝   ╚═╝
`

// PrintWithEff prints the banner using an EffectiveConfigResult which
// provides richer context (config, addr, data dir, source).
func PrintWithEff(eff config.EffectiveConfigResult, version string) {
	addr := eff.Addr
	if addr == "" && eff.Config != nil {
		addr = eff.Config.Addr()
	}
	dataDir := eff.DataDir
	if dataDir == "" && eff.Config != nil {
		dataDir = eff.Config.Storage.DataDir
	}
	src := eff.Source
	if src == "" {
		src = "flags"
	}
	backend := "file"
	if eff.Config != nil && eff.Config.Storage.Backend != "" {
		backend = eff.Config.Storage.Backend
	}

	fmt.Print(banner)
	fmt.Println("== Config =====================================================")
	fmt.Printf("Listen:   %s\n", addr)
	fmt.Printf("Data:     %s\n", dataDir)
	fmt.Printf("Backend:  %s\n", backend)
	if version != "" {
		fmt.Printf("Version:  %s\n", version)
	}
	fmt.Printf("Config: %s\n", src)

	fmt.Println("\n== Endpoints ==================================================")
	fmt.Println("POST /messages - Add a message (JSON: content, sender, type)")
	fmt.Println("GET  /messages - List all messages sorted by timestamp")
	fmt.Println("POST /upload   - Store a media file (multipart field 'file')")
	fmt.Println("POST /reset    - Clear the whole chat history")
	fmt.Println("GET  /uploads/{name} - Serve a stored media file")

	exampleURL := ExampleBaseURL(addr)
	fmt.Println("\n== Examples ===================================================")
	fmt.Printf("curl -X POST '%s/messages' -d '{\"content\":\"oi\",\"sender\":\"ana\",\"type\":\"text\"}'\n", exampleURL)
	fmt.Printf("curl '%s/messages'\n", exampleURL)

	fmt.Println("\n== Production? =================================================")
	if eff.Config != nil && len(eff.Config.Security.CORS.AllowedOrigins) > 0 {
		fmt.Printf("- CORS origins: restricted (%d)\n", len(eff.Config.Security.CORS.AllowedOrigins))
	} else {
		fmt.Println("- CORS origins: open to any origin")
	}
	tlsOK := eff.Config != nil && eff.Config.Server.TLS.CertFile != "" && eff.Config.Server.TLS.KeyFile != ""
	if tlsOK {
		fmt.Println("- TLS: configured")
	} else {
		fmt.Println("- TLS: unconfigured")
	}
	if eff.Config != nil && eff.Config.Security.RateLimit.RPS > 0 {
		fmt.Printf("- Rate limit: %.1f rps (burst %d)\n", eff.Config.Security.RateLimit.RPS, eff.Config.Security.RateLimit.Burst)
	} else {
		fmt.Println("- Rate limit: disabled")
	}
	if eff.Config != nil && eff.Config.Cleanup.Enabled {
		cron := eff.Config.Cleanup.Cron
		if cron == "" {
			cron = "0 3 * * *"
		}
		fmt.Printf("- Upload cleanup: enabled (cron=%s)\n", cron)
	} else {
		fmt.Println("- Upload cleanup: disabled")
	}
	if dataDir != "" {
		fmt.Printf("- Data dir: %s\n", dataDir)
	} else {
		fmt.Println("- Data dir: not set (use --data or MINICHAT_DATA_DIR)")
	}

	fmt.Println("\n== Logs: =================================================")
}

// ExampleBaseURL turns a listen address into a URL a user can paste.
// Wildcard hosts are rewritten to localhost since they are not dialable.
func ExampleBaseURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}
