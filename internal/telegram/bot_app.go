package telegram

import (
	"context"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Vovarama1992/genbot/internal/ai"
	"github.com/Vovarama1992/genbot/internal/conversation"
	"github.com/Vovarama1992/genbot/internal/domain"
	"github.com/Vovarama1992/genbot/internal/guard"
	"github.com/Vovarama1992/genbot/internal/imagegen"
	"github.com/Vovarama1992/genbot/internal/ports"
	"github.com/Vovarama1992/genbot/internal/reports"
)

type TextGenerator interface {
	Reply(ctx context.Context, user ports.UserRef, prompt string) (*ai.Completion, error)
}

type ImageGenerator interface {
	ResolveModel(ctx context.Context) (int, error)
	Submit(ctx context.Context, prompt string, modelID int, opts imagegen.SubmitOptions) (string, error)
	AwaitCompletion(ctx context.Context, jobID string, opts imagegen.PollOptions) ([]string, error)
}

type Deps struct {
	Text     TextGenerator
	Images   ImageGenerator
	Records  ports.RecordService
	Archive  ports.Archive
	Sessions *conversation.Machine
	Flood    *guard.FloodGuard
	Stale    guard.StalenessGuard
	Reports  *reports.Sink
	Log      *zap.Logger
}

type Options struct {
	GraceDelay  time.Duration
	ActionDelay time.Duration
	UploadDelay time.Duration

	Submit imagegen.SubmitOptions
	Poll   imagegen.PollOptions
}

func DefaultOptions() Options {
	return Options{
		GraceDelay:  3 * time.Second,
		ActionDelay: time.Second,
		UploadDelay: 3 * time.Second,
		Submit:      imagegen.DefaultSubmitOptions(),
		Poll:        imagegen.DefaultPollOptions(),
	}
}

type BotApp struct {
	text     TextGenerator
	images   ImageGenerator
	records  ports.RecordService
	archive  ports.Archive
	sessions *conversation.Machine
	flood    *guard.FloodGuard
	stale    guard.StalenessGuard
	sink     *reports.Sink
	log      *zap.Logger
	opts     Options

	// msg меняется при каждом переподключении, читать через messenger()
	msgMu  sync.RWMutex
	msg    Messenger
	routes map[route]Handler
	handle Handler

	textFlow  Handler
	imageFlow Handler

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
	after func(d time.Duration, fn func())
	// фоновые задачи (архив в S3); в тестах выполняются синхронно
	goAsync func(fn func())
}

func NewBotApp(deps Deps, opts Options) *BotApp {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	archive := deps.Archive
	if archive == nil {
		archive = domain.NopArchive{}
	}
	app := &BotApp{
		text:     deps.Text,
		images:   deps.Images,
		records:  deps.Records,
		archive:  archive,
		sessions: deps.Sessions,
		flood:    deps.Flood,
		stale:    deps.Stale,
		sink:     deps.Reports,
		log:      log,
		opts:     opts,

		now:     time.Now,
		sleep:   sleepCtx,
		after:   func(d time.Duration, fn func()) { time.AfterFunc(d, fn) },
		goAsync: func(fn func()) { go fn() },
	}
	app.routes = app.buildRoutes()
	return app
}

// Attach подключает мессенджер и собирает конвейер обработки событий
func (app *BotApp) Attach(m Messenger) {
	app.msgMu.Lock()
	app.msg = m
	app.msgMu.Unlock()

	app.textFlow = Chain(app.generateText, app.presence(tgbotapi.ChatTyping, app.opts.ActionDelay))
	app.imageFlow = Chain(app.generateImage, app.presence(tgbotapi.ChatUploadPhoto, app.opts.UploadDelay))

	app.handle = Chain(app.dispatch,
		app.withRecover,
		app.withStaleness,
		app.withFlood,
	)
}

// HandleEvent прогоняет одно событие через guards и диспетчер
func (app *BotApp) HandleEvent(ctx context.Context, ev Event) {
	app.handle(ctx, ev)
}

func (app *BotApp) messenger() Messenger {
	app.msgMu.RLock()
	defer app.msgMu.RUnlock()
	return app.msg
}

func (app *BotApp) send(chatID int64, text string, markup any) int {
	id, err := app.messenger().SendText(chatID, text, markup)
	if err != nil {
		app.log.Warn("[bot] send failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
	return id
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
