package main

import (
	_ "embed"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/tomz197/discoball/internal/config"
)

const (
	defaultHost = "0.0.0.0"
	defaultPort = "8080"
	defaultSSH  = "your-server.com"
)

//go:embed index.html
var htmlPage string

// pageHandler serves the landing page with the SSH host filled in.
func pageHandler(sshHost string) http.HandlerFunc {
	page := strings.ReplaceAll(htmlPage, "{{.SSHHost}}", sshHost)
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, page)
	}
}

func main() {
	host := config.GetEnv("WEB_HOST", defaultHost)
	port := config.GetEnv("WEB_PORT", defaultPort)
	sshHost := config.GetEnv("SSH_DISPLAY_HOST", defaultSSH)

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "discoball-web",
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/", pageHandler(sshHost))

	addr := fmt.Sprintf("%s:%s", host, port)
	logger.Info("Starting web server", "url", "http://"+addr, "sshHost", sshHost)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Fatal("server error", "err", err)
	}
}
