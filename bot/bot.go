package bot

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	tgapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// API is the subset of the Telegram client used by the bot.
// *tgapi.BotAPI implements it.
type API interface {
	GetUpdatesChan(config tgapi.UpdateConfig) tgapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgapi.Chattable) (tgapi.Message, error)
	Request(c tgapi.Chattable) (*tgapi.APIResponse, error)
}

// Handler handles a message update.
type Handler func(b *Bot, update tgapi.Update) error

// CallbackHandler handles an inline menu selection of its scope. token and
// value are the ones passed to InlineMenu.
type CallbackHandler func(b *Bot, query *tgapi.CallbackQuery, token, value string) error

type BotConfig struct {
	Token string
	// API overrides the Telegram client, otherwise built from Token on Start.
	API         API
	AuthManager Auth
	Logger      *slog.Logger
}

type Bot struct {
	// config
	token string
	Auth  Auth
	// handlers
	handlers      map[string]Handler
	adminHandlers map[string]Handler
	buttons       map[string]Handler
	callbacks     map[string]CallbackHandler
	textHandler   Handler
	// context and dispatching
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	lanes  *lanes
	// third party apis
	api    API
	logger *slog.Logger
}

func New(ctx context.Context, cfg BotConfig) *Bot {
	// create a new context for the bot and initialize it
	botCtx, cancel := context.WithCancel(ctx)
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	b := &Bot{
		token:         cfg.Token,
		Auth:          cfg.AuthManager,
		handlers:      map[string]Handler{},
		adminHandlers: map[string]Handler{},
		buttons:       map[string]Handler{},
		callbacks:     map[string]CallbackHandler{},
		ctx:           botCtx,
		cancel:        cancel,
		api:           cfg.API,
		logger:        logger,
	}
	b.lanes = newLanes(&b.wg)
	return b
}

// Context returns the context of the bot, cancelled on Stop.
func (b *Bot) Context() context.Context {
	return b.ctx
}

// AddCommand registers a command available to allowed users.
func (b *Bot) AddCommand(cmd string, h Handler) {
	b.handlers[cmd] = h
}

// AddAdminCommand registers a command available to admins only.
func (b *Bot) AddAdminCommand(cmd string, h Handler) {
	b.adminHandlers[cmd] = h
}

// AddButton registers a handler for the exact text of a reply keyboard button.
func (b *Bot) AddButton(text string, h Handler) {
	b.buttons[text] = h
}

// AddCallback registers the handler of the inline menus created with scope.
func (b *Bot) AddCallback(scope string, h CallbackHandler) {
	b.callbacks[scope] = h
}

// OnText registers the handler of any other text message.
func (b *Bot) OnText(h Handler) {
	b.textHandler = h
}

// Start method starts the bot and returns an error if something goes wrong.
// It starts a goroutine that listens to the updates from the bot and hands
// them to the lane of their sender.
func (b *Bot) Start() error {
	if b.Auth == nil {
		return errors.New("bot: auth manager is required")
	}
	// init bot api and attach it to the current bot instance
	if b.api == nil {
		api, err := tgapi.NewBotAPI(b.token)
		if err != nil {
			return err
		}
		b.api = api
	}
	// config the updates channel
	u := tgapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)
	// get updates from the bot in background
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for {
			select {
			case <-b.ctx.Done():
				b.api.StopReceivingUpdates()
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				b.dispatch(update)
			}
		}
	}()
	return nil
}

// Stop method stops the bot and waits for the running handlers.
func (b *Bot) Stop() {
	b.cancel()
	b.wg.Wait()
}

// Wait method blocks until the bot is stopped.
func (b *Bot) Wait() {
	<-b.ctx.Done()
}
