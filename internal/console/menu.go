// Package console is the interactive text menu over the article and chat
// services.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"articlesearch/internal/app"
	"articlesearch/internal/model"
)

const (
	choiceAdd    = "1"
	choiceSearch = "2"
	choiceList   = "3"
	choiceExit   = "4"
)

type ArticleService interface {
	Add(ctx context.Context, input app.AddArticleInput) (*model.Article, error)
	List(ctx context.Context) ([]model.Article, error)
}

type ChatService interface {
	ListSessions(ctx context.Context) ([]string, error)
	NewSessionID(existing []string) string
	History(ctx context.Context, sessionID string) ([]model.MemoryRecord, error)
	Ask(ctx context.Context, input app.AskInput) (*app.AskResult, error)
}

// Menu runs the numbered-choice loop. It is not safe for concurrent use.
type Menu struct {
	articles ArticleService
	chat     ChatService
	in       io.Reader
	out      io.Writer
	logger   *slog.Logger

	lines <-chan string
}

func NewMenu(articles ArticleService, chat ChatService, in io.Reader, out io.Writer) *Menu {
	return &Menu{
		articles: articles,
		chat:     chat,
		in:       in,
		out:      out,
		logger:   slog.Default().With("component", "menu"),
	}
}

// Run blocks until the user exits, input ends or ctx is cancelled.
func (m *Menu) Run(ctx context.Context) error {
	m.lines = readLines(ctx, m.in)

	m.println("Welcome to the Semantic Search Application!")
	for {
		m.println("\nOptions:")
		m.println("1. Add a new article")
		m.println("2. Search articles")
		m.println("3. Fetch all articles")
		m.println("4. Exit")

		choice, ok := m.prompt(ctx, "Enter your choice (1/2/3/4): ")
		if !ok {
			return ctx.Err()
		}

		var cont bool
		switch choice {
		case choiceAdd:
			cont = m.addArticle(ctx)
		case choiceSearch:
			cont = m.search(ctx)
		case choiceList:
			m.listArticles(ctx)
			cont = true
		case choiceExit:
			m.println("\nThank you for using the Semantic Search Application. Goodbye!")
			return nil
		default:
			m.println("Invalid choice. Please try again.")
			cont = true
		}
		if !cont {
			return ctx.Err()
		}
	}
}

func (m *Menu) addArticle(ctx context.Context) bool {
	content, ok := m.prompt(ctx, "Enter the article content: ")
	if !ok {
		return false
	}
	source, ok := m.prompt(ctx, "Enter the article source: ")
	if !ok {
		return false
	}

	_, err := m.articles.Add(ctx, app.AddArticleInput{PageContent: content, Source: source})
	switch {
	case err == nil:
		m.println("Article added successfully.")
	case errors.Is(err, app.ErrContentTooLong), errors.Is(err, app.ErrSourceTooLong):
		m.printf("Article not added: %v\n", err)
	case errors.Is(err, app.ErrInvalidInput):
		m.println("Article content cannot be empty.")
	default:
		m.logger.Error("add article failed", "err", err)
		m.printf("Error adding article: %v\n", err)
	}
	return true
}

func (m *Menu) search(ctx context.Context) bool {
	sessions, err := m.chat.ListSessions(ctx)
	if err != nil {
		m.logger.Error("list sessions failed", "err", err)
		m.printf("Error retrieving sessions: %v\n", err)
		return true
	}

	var sessionID string
	if len(sessions) == 0 {
		sessionID = m.chat.NewSessionID(nil)
		m.println("\nNo previous sessions found. Starting a new session...")
	} else {
		m.println("\nAvailable sessions:")
		for i, s := range sessions {
			m.printf("%d. %s\n", i+1, s)
		}

		answer, ok := m.prompt(ctx, "\nDo you want to continue a previous session or start a new one? (Type 'new' or the session number): ")
		if !ok {
			return false
		}
		sessionID = m.chooseSession(ctx, sessions, answer)
	}

	query, ok := m.prompt(ctx, "\nEnter the article to Search: ")
	if !ok {
		return false
	}

	result, err := m.chat.Ask(ctx, app.AskInput{SessionID: sessionID, Query: query})
	switch {
	case err == nil:
	case errors.Is(err, app.ErrQueryEmpty):
		m.println("Query cannot be empty.")
		return true
	case errors.Is(err, app.ErrMemoryNotRecorded) && result != nil:
		m.printf("Error storing memory: %v\n", err)
	default:
		m.logger.Error("ask failed", "session_id", sessionID, "err", err)
		m.printf("Error answering query: %v\n", err)
		return true
	}

	m.printf("\n%s\n", result.Response)
	return true
}

// chooseSession resolves the user's answer to a session id, replaying the
// history of a resumed session.
func (m *Menu) chooseSession(ctx context.Context, sessions []string, answer string) string {
	if strings.EqualFold(answer, "new") {
		m.println("\nStarting a new session...")
		return m.chat.NewSessionID(sessions)
	}

	n, err := strconv.Atoi(answer)
	if err != nil || n < 1 || n > len(sessions) {
		m.println("\nInvalid session choice. Starting a new session.")
		return m.chat.NewSessionID(sessions)
	}

	sessionID := sessions[n-1]
	m.printf("\nContinuing session: %s\n", sessionID)

	history, err := m.chat.History(ctx, sessionID)
	if err != nil {
		m.logger.Error("load session history failed", "session_id", sessionID, "err", err)
		m.printf("Error retrieving memory: %v\n", err)
		return sessionID
	}
	if len(history) > 0 {
		m.println("\nPrevious Interactions:")
		for _, record := range history {
			m.printf("User: %s\n", record.Query)
			m.printf("Agent: %s\n", record.Response)
		}
	}
	return sessionID
}

func (m *Menu) listArticles(ctx context.Context) {
	articles, err := m.articles.List(ctx)
	if err != nil {
		m.logger.Error("list articles failed", "err", err)
		m.printf("Error fetching articles: %v\n", err)
		return
	}
	if len(articles) == 0 {
		m.println("No articles found.")
		return
	}

	m.println("\nAll Articles:")
	for _, a := range articles {
		m.printf("- %s (Source: %s)\n", a.PageContent, a.Source)
	}
}

// prompt prints label and waits for one line. It reports false once input
// is exhausted or ctx is done.
func (m *Menu) prompt(ctx context.Context, label string) (string, bool) {
	fmt.Fprint(m.out, label)
	select {
	case <-ctx.Done():
		return "", false
	case line, ok := <-m.lines:
		if !ok {
			return "", false
		}
		return strings.TrimSpace(line), true
	}
}

func (m *Menu) println(s string) {
	fmt.Fprintln(m.out, s)
}

func (m *Menu) printf(format string, args ...any) {
	fmt.Fprintf(m.out, format, args...)
}

// readLines feeds lines from r into a channel so a blocked read never holds
// up cancellation.
func readLines(ctx context.Context, r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			slog.Default().Warn("read input failed", "err", err)
		}
	}()
	return lines
}
