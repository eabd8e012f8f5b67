package update

import (
	"errors"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/rs/zerolog"
	"github.com/sandeepkv93/todofile/internal/config"
	"github.com/sandeepkv93/todofile/internal/mailbox"
	"github.com/sandeepkv93/todofile/internal/model"
	"github.com/sandeepkv93/todofile/internal/scheduler"
	"github.com/sandeepkv93/todofile/internal/storage"
	"github.com/sandeepkv93/todofile/internal/worker"
)

var errNoWorker = errors.New("update: worker not connected")

type StatusBar struct {
	Text    string
	IsError bool
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type Options struct {
	Requests  *mailbox.Queue[worker.Request]
	Results   *mailbox.Queue[any]
	Debouncer *scheduler.Debouncer
	DataDir   string
	Keys      config.Keymap
	Logger    *zerolog.Logger
}

// Model is the router's state. Update is its only mutator.
type Model struct {
	Store      *model.Store
	Focus      model.Handle
	ShowDelete bool
	DocPath    string
	Subtitle   string
	Recent     []storage.RecentDocument

	Palette        CommandPaletteState
	HelpVisible    bool
	PreviewVisible bool
	PickerVisible  bool
	Status         StatusBar
	Keys           KeyMap
	Quitting       bool
	closing        bool
	// dirty is set by changes not yet handed to the worker.
	dirty          bool

	editor       textinput.Model
	commandInput textinput.Model
	picker       filepicker.Model
	helpModel    help.Model

	requests  *mailbox.Queue[worker.Request]
	results   *mailbox.Queue[any]
	debouncer *scheduler.Debouncer
	dataDir   string
	log       zerolog.Logger
}

// NewModel returns a router holding a single blank row for the default
// document.
func NewModel(opts Options) Model {
	keys := opts.Keys
	if keys == (config.Keymap{}) {
		keys = config.DefaultKeymap()
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = opts.Logger.With().Str("component", "router").Logger()
	}

	m := Model{
		Store:     model.NewStore(),
		DocPath:   storage.DefaultDocumentName,
		Subtitle:  storage.DefaultDocumentName,
		Keys:      NewKeyMap(keys),
		requests:  opts.Requests,
		results:   opts.Results,
		debouncer: opts.Debouncer,
		dataDir:   opts.DataDir,
		log:       log,
	}
	m.Focus = m.Store.InsertAt(0)
	m.initBubbleComponents()
	return m
}

func (m *Model) initBubbleComponents() {
	m.editor = textinput.New()
	m.editor.Prompt = ""
	m.editor.Placeholder = "new item"
	m.editor.Width = 52
	m.editor.Focus()

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 48

	m.helpModel = help.New()
}

func (m *Model) newPicker() {
	fp := filepicker.New()
	fp.CurrentDirectory = m.dataDir
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.ShowHidden = false
	fp.ShowPermissions = false
	fp.AutoHeight = false
	fp.Height = 10
	m.picker = fp
}
