package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
)

// TelegramService pushes order notifications to the staff chat.
type TelegramService struct {
	botToken    string
	staffChatID string
}

// NewTelegramService creates a new TelegramService.
func NewTelegramService(botToken, staffChatID string) *TelegramService {
	return &TelegramService{
		botToken:    botToken,
		staffChatID: staffChatID,
	}
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// SendMessage sends a message to the specified chat.
func (s *TelegramService) SendMessage(chatID, text string) error {
	if s.botToken == "" {
		log.Println("[Telegram] Bot token not configured")
		return nil
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", s.botToken)

	msg := telegramMessage{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "HTML",
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Printf("[Telegram] Failed to send message: %v", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[Telegram] Unexpected status: %d", resp.StatusCode)
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}

	return nil
}

// SendToStaff sends a message to the staff chat.
func (s *TelegramService) SendToStaff(text string) error {
	if s.staffChatID == "" {
		log.Println("[Telegram] Staff chat ID not configured")
		return nil
	}
	return s.SendMessage(s.staffChatID, text)
}

// OrderNotification contains order data for the staff notification.
type OrderNotification struct {
	OrderID      string
	PickupCode   string
	CustomerName string
	Items        []OrderItemNotification
	Total        float64
}

// OrderItemNotification contains order item data.
type OrderItemNotification struct {
	Name      string
	Quantity  int
	UnitPrice float64
}

// FormatPrice renders a monetary amount for the notification text.
func FormatPrice(amount float64) string {
	return fmt.Sprintf("$%.2f", amount)
}

// NotifyNewOrder tells the staff chat about a freshly placed pickup order.
func (s *TelegramService) NotifyNewOrder(order OrderNotification) error {
	if s.staffChatID == "" {
		return nil
	}

	var itemsList strings.Builder
	for i, item := range order.Items {
		lineTotal := item.UnitPrice * float64(item.Quantity)
		itemsList.WriteString(fmt.Sprintf("%d. <b>%s</b>\n   %d x %s = %s\n",
			i+1,
			item.Name,
			item.Quantity,
			FormatPrice(item.UnitPrice),
			FormatPrice(lineTotal),
		))
	}

	customer := order.CustomerName
	if customer == "" {
		customer = "Guest"
	}

	message := fmt.Sprintf(`<b>☕ NEW PICKUP ORDER</b>
<b>Pickup code:</b> %s
<b>Customer:</b> %s
<b>Items:</b>
%s
<b>Total:</b> %s
━━━━━━━━━━━━━━━━━━`,
		order.PickupCode,
		customer,
		itemsList.String(),
		FormatPrice(order.Total),
	)

	return s.SendToStaff(strings.TrimSpace(message))
}
