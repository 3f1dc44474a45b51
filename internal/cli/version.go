package cli

import (
	"encoding/json"
	"fmt"
	"io"
)

// PrintVersion prints version information as text.
func PrintVersion(w io.Writer, version, commit, date string) {
	_, _ = fmt.Fprintf(w, "pgpainless %s\n", version)
	_, _ = fmt.Fprintf(w, "  commit: %s\n", commit)
	_, _ = fmt.Fprintf(w, "  built:  %s\n", date)
}

// PrintVersionJSON prints version information as JSON.
func PrintVersionJSON(w io.Writer, version, commit, date string) {
	info := struct {
		Version string `json:"version"`
		Commit  string `json:"commit"`
		Date    string `json:"date"`
	}{Version: version, Commit: commit, Date: date}
	data, _ := json.MarshalIndent(info, "", "  ")
	_, _ = fmt.Fprintf(w, "%s\n", data)
}
