// Terminal transcript viewer. Attaches to one language's websocket stream
// and renders finalized records plus the in-place transient partial line.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/gorilla/websocket"
)

type record struct {
	Seq     uint64 `json:"seq"`
	Text    string `json:"text"`
	IsError bool   `json:"isError,omitempty"`
}

type streamMessage struct {
	Type    string   `json:"type"`
	Lang    string   `json:"lang"`
	Records []record `json:"records,omitempty"`
	Record  *record  `json:"record,omitempty"`
	Text    string   `json:"text,omitempty"`
}

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1).Border(lipgloss.RoundedBorder())
	recordStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	partialStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
)

// clearLine erases the current terminal line so a new partial or record can
// overwrite the previous partial.
const clearLine = "\r\x1b[2K"

func printRecord(rec record) {
	style := recordStyle
	if rec.IsError {
		style = errorStyle
	}
	fmt.Print(clearLine)
	fmt.Println(style.Render(rec.Text))
}

func main() {
	server := flag.String("server", "localhost:8080", "service address")
	lang := flag.String("lang", "en", "language code to follow")
	flag.Parse()

	u := url.URL{Scheme: "ws", Host: *server, Path: "/v1/stream/" + *lang}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("connect %s: %v", u.String(), err)
	}
	defer conn.Close()

	fmt.Println(headerStyle.Render(fmt.Sprintf("Transcript viewer · %s · %s", *lang, *server)))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var msg streamMessage
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			switch msg.Type {
			case "backfill":
				for _, rec := range msg.Records {
					printRecord(rec)
				}
			case "append":
				if msg.Record != nil {
					printRecord(*msg.Record)
				}
			case "partial":
				fmt.Print(clearLine)
				fmt.Print(partialStyle.Render(strings.TrimSpace(msg.Text)))
			case "clearPartial":
				fmt.Print(clearLine)
			}
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-done:
	case <-sigCh:
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}
	fmt.Print(clearLine)
}
