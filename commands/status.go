package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"JalebiJams/player"
	"JalebiJams/queue"
	"JalebiJams/utils"
)

const queueDisplayLimit = 10

// VersionFunc reports the version of the extractor binary
type VersionFunc func(ctx context.Context) (string, error)

// Diagnostics gathers the extraction stack details shown by the status command
type Diagnostics struct {
	version       VersionFunc
	secondaryHost string
	cookieFile    string
	now           func() time.Time
}

// Report is a collected set of diagnostics
type Report struct {
	ExtractorVersion string
	SecondaryHost    string
	Cookies          string
}

func NewDiagnostics(version VersionFunc, secondaryHost, cookieFile string) *Diagnostics {
	return &Diagnostics{
		version:       version,
		secondaryHost: secondaryHost,
		cookieFile:    cookieFile,
		now:           time.Now,
	}
}

// Collect gathers a report. Failures are reported inline
func (d *Diagnostics) Collect(ctx context.Context) Report {
	r := Report{
		ExtractorVersion: "unknown",
		SecondaryHost:    d.secondaryHost,
		Cookies:          d.cookieHealth(),
	}
	if r.SecondaryHost == "" {
		r.SecondaryHost = "disabled"
	}

	if d.version != nil {
		versionCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if v, err := d.version(versionCtx); err != nil {
			r.ExtractorVersion = "unavailable (" + utils.Truncate(err.Error(), 80) + ")"
		} else {
			r.ExtractorVersion = v
		}
	}
	return r
}

func (d *Diagnostics) cookieHealth() string {
	if d.cookieFile == "" {
		return "not configured"
	}

	info, err := os.Stat(d.cookieFile)
	if err != nil {
		return "missing"
	}
	if info.Size() == 0 {
		return "empty"
	}

	age := d.now().Sub(info.ModTime()).Round(time.Minute)
	return fmt.Sprintf("present, %d bytes, updated %s ago", info.Size(), age)
}

func formatQueue(snap queue.Snapshot) string {
	if snap.Current == nil && len(snap.Pending) == 0 {
		return "The queue is empty 📭"
	}

	var b strings.Builder
	if snap.Current != nil {
		fmt.Fprintf(&b, "**Now playing:** %s\n", snap.Current.Title)
	}
	if len(snap.Pending) > 0 {
		b.WriteString("**Up next:**\n")
		for idx, ref := range snap.Pending {
			if idx == queueDisplayLimit {
				fmt.Fprintf(&b, "...and %d more\n", len(snap.Pending)-queueDisplayLimit)
				break
			}
			fmt.Fprintf(&b, "%d. %s (requested by %s)\n", idx+1, ref.Title, ref.ReplyTarget.RequestedBy)
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func formatStatus(st player.Status, r Report) string {
	var b strings.Builder
	b.WriteString("**Status**\n")

	state := st.State.String()
	if st.Paused {
		state += " (paused)"
	}
	fmt.Fprintf(&b, "State: %s\n", state)

	if st.Connected {
		fmt.Fprintf(&b, "Voice: <#%s>\n", st.ChannelID)
	} else {
		b.WriteString("Voice: not connected\n")
	}
	if st.Track != nil {
		fmt.Fprintf(&b, "Now playing: %s via %s\n", st.Track.Title, st.Track.Provider)
	}

	fmt.Fprintf(&b, "Queue: %d pending\n", st.Pending)
	fmt.Fprintf(&b, "Volume: %d%%\n", st.Volume)
	fmt.Fprintf(&b, "Playlist mode: %s\n", st.Mode)
	if st.Played >= 0 {
		fmt.Fprintf(&b, "Tracks played: %d\n", st.Played)
	}
	fmt.Fprintf(&b, "yt-dlp: %s\n", r.ExtractorVersion)
	fmt.Fprintf(&b, "Secondary provider: %s\n", r.SecondaryHost)
	fmt.Fprintf(&b, "Cookies: %s", r.Cookies)
	return b.String()
}
