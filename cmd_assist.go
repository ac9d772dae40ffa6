package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"blog_ai_editor/editor"
	"blog_ai_editor/posts"
	"blog_ai_editor/toolbar"
	"blog_ai_editor/transform"
)

type assistOptions struct {
	PostID  string
	Action  string
	Select  string
	Find    string
	Topic   string
	Pick    int
	NoHooks bool
	Diff    bool
}

// assistDeps are the collaborators of one assist run, built from config by
// the command and replaced in tests.
type assistDeps struct {
	Repo        posts.Repository
	Transformer toolbar.Transformer
	Clipboard   toolbar.Clipboard
	Audience    string
	Language    string
	Timeout     time.Duration
	Logger      *zap.Logger
}

var assistOpts assistOptions

var assistCmd = &cobra.Command{
	Use:   "assist",
	Short: "Run one AI toolbar action on a stored post",
	Long: `Loads a post into the editor, selects text if asked, runs one AI toolbar action against the
configured transformation endpoint and saves every change back to the post.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadRuntime()
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		repo, release, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer release()

		client, err := transform.NewClient(cfg.Assistant.Endpoint, transform.WithLogger(logger))
		if err != nil {
			return err
		}
		deps := assistDeps{
			Repo:        repo,
			Transformer: client,
			Clipboard:   toolbar.SystemClipboard{},
			Audience:    cfg.Assistant.Audience,
			Language:    cfg.Assistant.Language,
			Timeout:     cfg.Assistant.Timeout(),
			Logger:      logger,
		}
		return runAssist(cmd.Context(), deps, assistOpts, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	f := assistCmd.Flags()
	f.StringVar(&assistOpts.PostID, "post", "", "id of the post to edit")
	f.StringVar(&assistOpts.Action, "action", "", "action id (see the actions command)")
	f.StringVar(&assistOpts.Select, "select", "", "select text by rune offsets, as from:to")
	f.StringVar(&assistOpts.Find, "find", "", "select the first occurrence of this text")
	f.StringVar(&assistOpts.Topic, "topic", "", "topic for generate actions (prompted when empty)")
	f.IntVar(&assistOpts.Pick, "pick", -1, "result to choose without prompting (0-based)")
	f.BoolVar(&assistOpts.NoHooks, "no-hooks", false, "do not write title, tags or excerpt to the post; copy them instead")
	f.BoolVar(&assistOpts.Diff, "diff", false, "print the markup diff after the action")
	_ = assistCmd.MarkFlagRequired("post")
	_ = assistCmd.MarkFlagRequired("action")
	assistCmd.MarkFlagsMutuallyExclusive("select", "find")
}

// postSession keeps the loaded post in step with the editor and the hooks,
// saving after each change.
type postSession struct {
	mu     sync.Mutex
	ctx    context.Context
	repo   posts.Repository
	post   posts.Post
	err    error
	logger *zap.Logger
}

func (s *postSession) update(apply func(p *posts.Post)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	apply(&s.post)
	saved, err := s.repo.Update(s.ctx, s.post)
	if err != nil {
		s.logger.Error("saving post", zap.String("id", s.post.ID), zap.Error(err))
		s.err = errors.Join(s.err, err)
		return
	}
	s.post = saved
}

func (s *postSession) metadata() toolbar.Metadata {
	s.mu.Lock()
	defer s.mu.Unlock()
	return toolbar.Metadata{Title: s.post.Title, Category: s.post.Category}
}

func runAssist(ctx context.Context, deps assistDeps, opts assistOptions, in io.Reader, out io.Writer) error {
	action, err := transform.ParseActionID(opts.Action)
	if err != nil {
		return err
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	post, err := deps.Repo.Get(ctx, opts.PostID)
	if err != nil {
		return fmt.Errorf("loading post %s: %w", opts.PostID, err)
	}
	doc, err := editor.NewDocument(post.Content, logger)
	if err != nil {
		return err
	}
	defer doc.Close()
	before := doc.Markup()

	session := &postSession{ctx: ctx, repo: deps.Repo, post: post, logger: logger}
	doc.OnChange(func(markup string) {
		session.update(func(p *posts.Post) { p.Content = markup })
	})
	tracker := editor.TrackSelection(doc)
	defer tracker.Close()

	if err := selectText(doc, opts); err != nil {
		return err
	}

	var hooks toolbar.Hooks
	if !opts.NoHooks {
		hooks = toolbar.Hooks{
			AcceptTitle: func(title string) {
				session.update(func(p *posts.Post) { p.Title = title })
			},
			AcceptTags: func(tags []string) {
				session.update(func(p *posts.Post) { p.Tags = tags })
			},
			AcceptExcerpt: func(excerpt string) {
				session.update(func(p *posts.Post) { p.Excerpt = excerpt })
			},
		}
	}

	ctrl, err := toolbar.NewController(doc, tracker, toolbar.Options{
		Transformer: deps.Transformer,
		Notifier:    newConsoleNotifier(out),
		Clipboard:   deps.Clipboard,
		Hooks:       hooks,
		Metadata:    session.metadata,
		Audience:    deps.Audience,
		Language:    deps.Language,
		Timeout:     deps.Timeout,
		Logger:      logger,
	})
	if err != nil {
		return err
	}
	defer ctrl.Close()

	p := &prompter{in: bufio.NewReader(in), out: out}
	outcome, err := pickAction(ctx, ctrl, action, opts.Topic, p)
	if err != nil {
		return err
	}
	if outcome == toolbar.OutcomePresenting {
		if err := chooseResult(ctrl, opts.Pick, p); err != nil {
			return err
		}
	}

	if opts.Diff {
		printDiff(out, before, doc.Markup())
	}
	return session.err
}

func pickAction(ctx context.Context, ctrl *toolbar.Controller, id transform.ActionID, topic string, p *prompter) (toolbar.Outcome, error) {
	if err := ctrl.OpenMenu(); err != nil {
		return toolbar.OutcomeNone, err
	}
	outcome, err := ctrl.Pick(ctx, id)
	if err != nil || outcome != toolbar.OutcomeAwaitingTopic {
		return outcome, err
	}

	if topic == "" {
		topic, err = p.ask("Tema: ")
		if err != nil {
			_ = ctrl.CancelTopic()
			return toolbar.OutcomeNone, err
		}
	}
	if err := ctrl.SetTopic(topic); err != nil {
		return toolbar.OutcomeNone, err
	}
	outcome, err = ctrl.SubmitTopic(ctx)
	if err == nil && outcome == toolbar.OutcomeRejected {
		// An empty topic leaves the prompt open; the command does not ask again.
		err = ctrl.CancelTopic()
	}
	return outcome, err
}

// chooseResult presents the results panel and applies the user's choice.
// pick >= 0 answers without reading input.
func chooseResult(ctrl *toolbar.Controller, pick int, p *prompter) error {
	results, ok := ctrl.Results()
	if !ok {
		return nil
	}

	switch results.Action {
	case transform.GenerateTitle:
		for i, t := range results.Titles {
			fmt.Fprintf(p.out, "  [%d] %s\n", i, t)
		}
		i, skip, err := p.choose(pick, "Títol (número, buit per descartar): ")
		if err != nil || skip {
			_, derr := ctrl.Dismiss()
			return errors.Join(err, derr)
		}
		_, err = ctrl.SelectTitle(i)
		return err

	case transform.SuggestTags:
		for i, t := range results.Tags {
			fmt.Fprintf(p.out, "  [%d] %s\n", i, t)
		}
		if pick >= 0 {
			_, err := ctrl.CopyTag(pick)
			if err != nil {
				return err
			}
			_, err = ctrl.Dismiss()
			return err
		}
		for {
			answer, err := p.ask("Etiquetes (s = acceptar totes, número = copiar una, buit = tancar): ")
			if err != nil || answer == "" {
				_, derr := ctrl.Dismiss()
				return errors.Join(err, derr)
			}
			if strings.EqualFold(answer, "s") {
				_, err = ctrl.ConfirmTags()
				return err
			}
			i, convErr := strconv.Atoi(answer)
			if convErr != nil {
				fmt.Fprintln(p.out, "Resposta no vàlida")
				continue
			}
			if _, err := ctrl.CopyTag(i); err != nil && !errors.Is(err, toolbar.ErrInvalidChoice) {
				return err
			}
		}

	default:
		fmt.Fprintf(p.out, "  %s\n", results.Excerpt)
		accept := pick >= 0
		if pick < 0 {
			answer, err := p.ask("Acceptar el resum? [s/N]: ")
			if err != nil {
				_, derr := ctrl.Dismiss()
				return errors.Join(err, derr)
			}
			accept = strings.EqualFold(answer, "s")
		}
		if !accept {
			_, err := ctrl.Dismiss()
			return err
		}
		_, err := ctrl.AcceptExcerpt()
		return err
	}
}

// selectText applies --select or --find to the document.
func selectText(doc *editor.Document, opts assistOptions) error {
	switch {
	case opts.Select != "":
		from, to, err := parseRange(opts.Select)
		if err != nil {
			return err
		}
		return doc.SetSelection(from, to)
	case opts.Find != "":
		from, to, ok := findRange(doc.PlainText(), opts.Find)
		if !ok {
			return fmt.Errorf("text %q not found in the post", opts.Find)
		}
		return doc.SetSelection(from, to)
	default:
		return nil
	}
}

// parseRange reads "from:to" rune offsets.
func parseRange(s string) (int, int, error) {
	a, b, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("invalid selection %q, want from:to", s)
	}
	from, err := strconv.Atoi(strings.TrimSpace(a))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid selection start %q", a)
	}
	to, err := strconv.Atoi(strings.TrimSpace(b))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid selection end %q", b)
	}
	return from, to, nil
}

// findRange locates needle in text and returns its rune offsets.
func findRange(text, needle string) (int, int, bool) {
	i := strings.Index(text, needle)
	if i < 0 || needle == "" {
		return 0, 0, false
	}
	from := utf8.RuneCountInString(text[:i])
	return from, from + utf8.RuneCountInString(needle), true
}

type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func (p *prompter) ask(question string) (string, error) {
	fmt.Fprint(p.out, question)
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// choose returns a 0-based index, or skip when the user gives no answer.
func (p *prompter) choose(pick int, question string) (int, bool, error) {
	if pick >= 0 {
		return pick, false, nil
	}
	answer, err := p.ask(question)
	if err != nil || answer == "" {
		return 0, true, err
	}
	i, err := strconv.Atoi(answer)
	if err != nil {
		return 0, false, fmt.Errorf("invalid choice %q", answer)
	}
	return i, false, nil
}
