package wa

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mdp/qrterminal"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	walog "go.mau.fi/whatsmeow/util/log"
	_ "modernc.org/sqlite"
)

var ErrNotInitialized = errors.New("whatsapp client not initialized")

// Message is an incoming chat message reduced to what the bot routes on.
type Message struct {
	Chat     types.JID
	Sender   types.JID
	PushName string
	Text     string
	FromMe   bool
}

// IsLID reports whether the sender is addressed by a linked identity rather
// than a phone number.
func (m Message) IsLID() bool {
	return m.Sender.Server == types.HiddenUserServer ||
		(m.Sender.Server == types.DefaultUserServer && len(m.Sender.User) > 15)
}

type MessageHandler func(ctx context.Context, msg Message)

type Service struct {
	client  *whatsmeow.Client
	dbPath  string
	log     walog.Logger
	handler MessageHandler
}

func NewService(dbPath string, log walog.Logger) *Service {
	return &Service{dbPath: dbPath, log: log}
}

// Initialize opens the device store next to the bot's own tables and creates
// the client. It does not connect.
func (s *Service) Initialize(ctx context.Context) error {
	// WAL sticks to the file, busy_timeout is per connection.
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", s.dbPath)
	container, err := sqlstore.New(ctx, "sqlite", dsn, s.log.Sub("Database"))
	if err != nil {
		return fmt.Errorf("open device store: %w", err)
	}

	devices, err := container.GetAllDevices(ctx)
	if err != nil {
		return fmt.Errorf("load devices: %w", err)
	}
	var device *store.Device
	if len(devices) > 0 {
		device = devices[0]
	} else {
		device = container.NewDevice()
	}

	s.client = whatsmeow.NewClient(device, s.log.Sub("Client"))
	s.client.AddEventHandler(s.onEvent)
	return nil
}

func (s *Service) SetMessageHandler(h MessageHandler) {
	s.handler = h
}

func (s *Service) onEvent(evt interface{}) {
	msg, ok := evt.(*events.Message)
	if !ok || s.handler == nil {
		return
	}
	text := TextOf(msg)
	if text == "" {
		return
	}
	go s.handler(context.Background(), Message{
		Chat:     msg.Info.Chat,
		Sender:   msg.Info.Sender,
		PushName: msg.Info.PushName,
		Text:     text,
		FromMe:   msg.Info.IsFromMe,
	})
}

// TextOf extracts the plain text of a message, or "" for media and others.
func TextOf(evt *events.Message) string {
	if evt.Message == nil {
		return ""
	}
	if c := evt.Message.GetConversation(); c != "" {
		return c
	}
	return evt.Message.GetExtendedTextMessage().GetText()
}

func (s *Service) Connect() error {
	if s.client == nil {
		return ErrNotInitialized
	}
	if s.client.IsConnected() {
		return nil
	}
	return s.client.Connect()
}

func (s *Service) Disconnect() {
	if s.client != nil {
		s.client.Disconnect()
	}
}

func (s *Service) IsLoggedIn() bool {
	return s.client != nil && s.client.Store.ID != nil
}

// Pair requests a phone pairing code. The client must already be connected.
func (s *Service) Pair(ctx context.Context, phone string) (string, error) {
	if s.IsLoggedIn() {
		return "", errors.New("already logged in")
	}
	if !s.client.IsConnected() {
		return "", errors.New("client not connected")
	}
	return s.client.PairPhone(ctx, phone, true, whatsmeow.PairClientChrome, "Chrome (Linux)")
}

// PrintQR connects and renders login QR codes until the login flow ends.
// The QR channel has to exist before Connect, so both happen here.
func (s *Service) PrintQR(ctx context.Context) error {
	if s.IsLoggedIn() {
		return nil
	}
	qrChan, err := s.client.GetQRChannel(ctx)
	if err != nil {
		return fmt.Errorf("get qr channel: %w", err)
	}
	if err := s.client.Connect(); err != nil {
		return fmt.Errorf("connect for qr: %w", err)
	}
	for evt := range qrChan {
		if evt.Event == "code" {
			qrterminal.GenerateHalfBlock(evt.Code, qrterminal.L, os.Stdout)
			continue
		}
		s.log.Infof("Login event: %s", evt.Event)
	}
	return nil
}

// Reply sends text to chat after delay, showing the typing indicator while
// waiting when typing is set.
func (s *Service) Reply(ctx context.Context, chat types.JID, text string, delay time.Duration, typing bool) error {
	if s.client == nil {
		return ErrNotInitialized
	}
	if delay > 0 {
		if typing {
			_ = s.client.SendChatPresence(ctx, chat, types.ChatPresenceComposing, types.ChatPresenceMediaText)
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if typing {
			_ = s.client.SendChatPresence(ctx, chat, types.ChatPresencePaused, types.ChatPresenceMediaText)
		}
	}

	_, err := s.client.SendMessage(ctx, chat, &waE2E.Message{Conversation: &text})
	if err != nil {
		return fmt.Errorf("send to %s: %w", chat, err)
	}
	return nil
}
