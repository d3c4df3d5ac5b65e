package handler

import (
	"context"
	"sync"
	"time"

	"lexicon/internal/domain"
	"lexicon/internal/service"
	"lexicon/internal/userlock"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// requestTimeout bounds storage work done for one update
const requestTimeout = 10 * time.Second

// Handler manages all bot interactions
type Handler struct {
	bot            *tele.Bot
	authService    *service.AuthService
	entryService   *service.EntryService
	exampleService *service.ExampleService
	folderService  *service.FolderService
	statsService   *service.StatisticsService
	topLimit       int
	logger         *zap.Logger

	// User states (in-memory state machine)
	states   map[int64]*domain.StateData
	active   map[int64]int64 // dictionary new words go to, 0 is the default one
	stateMux sync.RWMutex

	// Serializes callbacks of one user so double taps don't race
	callbackLocks *userlock.Locker
}

// NewHandler creates a new handler instance
func NewHandler(
	bot *tele.Bot,
	authService *service.AuthService,
	entryService *service.EntryService,
	exampleService *service.ExampleService,
	folderService *service.FolderService,
	statsService *service.StatisticsService,
	topLimit int,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		bot:            bot,
		authService:    authService,
		entryService:   entryService,
		exampleService: exampleService,
		folderService:  folderService,
		statsService:   statsService,
		topLimit:       topLimit,
		logger:         logger,
		states:         make(map[int64]*domain.StateData),
		active:         make(map[int64]int64),
		callbackLocks:  userlock.New(),
	}
}

// RegisterHandlers registers all bot handlers
func (h *Handler) RegisterHandlers() {
	// Commands
	h.bot.Handle("/start", h.handleStart)
	h.bot.Handle("/stats", h.handleStats)
	h.bot.Handle("/top", h.handleTop)
	h.bot.Handle("/folders", h.handleFolders)
	h.bot.Handle("/search", h.handleSearch)

	// Text messages
	h.bot.Handle(tele.OnText, h.handleText)

	// Callback queries (inline buttons)
	h.bot.Handle(&btnAddWord, h.handleAddWord)
	h.bot.Handle(&btnViewDays, h.handleViewDays)
	h.bot.Handle(&btnRandomEntry, h.handleRandomEntry)
	h.bot.Handle(&btnStats, h.handleStats)
	h.bot.Handle(&btnTop, h.handleTop)
	h.bot.Handle(&btnCancel, h.handleCancel)
	h.bot.Handle(&btnMore, h.handleRandomEntry)
	h.bot.Handle(&btnBack, h.handleStart)
	h.bot.Handle(&btnBackToDays, h.handleViewDays)
	h.bot.Handle(&btnMainMenu, h.handleStart)
	h.bot.Handle(&btnFolders, h.handleFolders)
	h.bot.Handle(&btnBackToFolders, h.handleFolders)
	h.bot.Handle(&btnNewFolder, h.handleNewFolder)
	h.bot.Handle(&btnSearch, h.handleSearch)

	// Generic callback handler for dynamic data
	h.bot.Handle(tele.OnCallback, h.handleCallback)
}

// GetState returns user's current state
func (h *Handler) GetState(userID int64) *domain.StateData {
	h.stateMux.RLock()
	defer h.stateMux.RUnlock()

	state, exists := h.states[userID]
	if !exists {
		return &domain.StateData{State: domain.StateIdle}
	}
	return state
}

// SetState sets user's state
func (h *Handler) SetState(userID int64, state *domain.StateData) {
	h.stateMux.Lock()
	defer h.stateMux.Unlock()
	h.states[userID] = state
}

// ResetState resets user to idle state
func (h *Handler) ResetState(userID int64) {
	h.SetState(userID, &domain.StateData{State: domain.StateIdle})
}

// ActiveDictionary returns the dictionary the user's new words go to, 0 for the default one
func (h *Handler) ActiveDictionary(userID int64) int64 {
	h.stateMux.RLock()
	defer h.stateMux.RUnlock()
	return h.active[userID]
}

// SetActiveDictionary makes new words of the user go to dictionaryID, 0 for the default one
func (h *Handler) SetActiveDictionary(userID, dictionaryID int64) {
	h.stateMux.Lock()
	defer h.stateMux.Unlock()
	if dictionaryID == 0 {
		delete(h.active, userID)
		return
	}
	h.active[userID] = dictionaryID
}

// lockUser serializes callback processing per user and returns the unlock func
func (h *Handler) lockUser(userID int64) func() {
	return h.callbackLocks.Lock(userID)
}

func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

const (
	msgMainMenu      = "🏠 Главное меню\n\nВыберите действие:"
	msgInternalError = "Произошла ошибка. Попробуйте позже."
	msgNoEntries     = "У тебя пока нет сохранённых слов"
)

// Inline keyboard buttons
var (
	btnAddWord = tele.Btn{
		Unique: "add_word",
		Text:   "➕ Добавить слово",
	}
	btnViewDays = tele.Btn{
		Unique: "view_days",
		Text:   "📅 Посмотреть дни",
	}
	btnRandomEntry = tele.Btn{
		Unique: "random_pair",
		Text:   "🎲 Случайная пара",
	}
	btnStats = tele.Btn{
		Unique: "stats",
		Text:   "📊 Моя статистика",
	}
	btnTop = tele.Btn{
		Unique: "top",
		Text:   "🏆 Лидеры",
	}
	btnCancel = tele.Btn{
		Unique: "cancel",
		Text:   "❌ Отменить",
	}
	btnMore = tele.Btn{
		Unique: "more",
		Text:   "🔄 Ещё",
	}
	btnBack = tele.Btn{
		Unique: "back",
		Text:   "🏠 Назад",
	}
	btnBackToDays = tele.Btn{
		Unique: "back_to_days",
		Text:   "◀️ К дням",
	}
	btnMainMenu = tele.Btn{
		Unique: "main_menu",
		Text:   "🏠 Главное меню",
	}
	btnFolders = tele.Btn{
		Unique: "folders",
		Text:   "📁 Папки",
	}
	btnBackToFolders = tele.Btn{
		Unique: "back_to_folders",
		Text:   "◀️ К папкам",
	}
	btnNewFolder = tele.Btn{
		Unique: "new_folder",
		Text:   "➕ Новая папка",
	}
	btnSearch = tele.Btn{
		Unique: "search",
		Text:   "🔍 Поиск",
	}
)

// mainMenuMarkup returns the main menu keyboard
func mainMenuMarkup() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	menu.Inline(
		menu.Row(btnAddWord),
		menu.Row(btnViewDays, btnFolders),
		menu.Row(btnRandomEntry, btnSearch),
		menu.Row(btnStats, btnTop),
	)
	return menu
}

// cancelMarkup returns a keyboard with a single cancel button
func cancelMarkup() *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(btnCancel))
	return markup
}

// show edits the message of a callback or sends a new one for commands.
// opts are passed on to telebot, e.g. tele.ModeHTML.
func (h *Handler) show(c tele.Context, text string, markup *tele.ReplyMarkup, opts ...interface{}) error {
	opts = append([]interface{}{markup}, opts...)
	if c.Callback() == nil {
		return c.Send(text, opts...)
	}
	if err := c.Edit(text, opts...); err != nil {
		if handleErr := h.handleEditError(err, c, c.Sender().ID); handleErr == nil {
			return nil // Message was already modified, just acknowledged
		}
		return c.Send(text, opts...)
	}
	return c.Respond()
}

// fail reports a failure to the user in the way the update allows
func (h *Handler) fail(c tele.Context, text string) error {
	if c.Callback() != nil {
		return c.Respond(&tele.CallbackResponse{Text: text})
	}
	return c.Send(text)
}
