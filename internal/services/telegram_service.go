package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
)

// TelegramService handles sending notifications to Telegram.
type TelegramService struct {
	botToken    string
	adminChatID string
}

// NewTelegramService creates a new TelegramService.
func NewTelegramService(botToken, adminChatID string) *TelegramService {
	return &TelegramService{
		botToken:    botToken,
		adminChatID: adminChatID,
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

// SendToAdmin sends a message to the admin chat.
func (s *TelegramService) SendToAdmin(text string) error {
	if s.adminChatID == "" {
		log.Println("[Telegram] Admin chat ID not configured")
		return nil
	}
	return s.SendMessage(s.adminChatID, text)
}

// OrderNotification contains order data for Telegram notification.
type OrderNotification struct {
	OrderNumber   string
	Items         []OrderItemNotification
	TotalAmount   float64
	RecipientName string
	Phone         string
	PaymentMethod string
}

// OrderItemNotification contains order item data.
type OrderItemNotification struct {
	Name     string
	Quantity int
	Price    float64
}

// PaymentNotification contains payment confirmation data.
type PaymentNotification struct {
	OrderNumber string
	Amount      float64
}

// FormatPrice formats an amount with thousand separators.
func FormatPrice(amount float64) string {
	intAmount := int64(amount)
	str := fmt.Sprintf("%d", intAmount)

	var result strings.Builder
	length := len(str)
	for i, digit := range str {
		if i > 0 && (length-i)%3 == 0 {
			result.WriteString(",")
		}
		result.WriteRune(digit)
	}

	return result.String() + " VND"
}

// NotifyNewOrder sends a new-order notification to the admin chat.
func (s *TelegramService) NotifyNewOrder(order OrderNotification) error {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🛒 <b>New order %s</b>\n\n", order.OrderNumber))
	for _, item := range order.Items {
		b.WriteString(fmt.Sprintf("• %s ×%d — %s\n", item.Name, item.Quantity, FormatPrice(item.Price)))
	}
	b.WriteString(fmt.Sprintf("\nTotal: <b>%s</b>\n", FormatPrice(order.TotalAmount)))
	b.WriteString(fmt.Sprintf("Recipient: %s (%s)\n", order.RecipientName, order.Phone))
	b.WriteString(fmt.Sprintf("Payment: %s", order.PaymentMethod))

	return s.SendToAdmin(b.String())
}

// NotifyPaymentConfirmed sends a bank-transfer confirmation notification.
func (s *TelegramService) NotifyPaymentConfirmed(payment PaymentNotification) error {
	text := fmt.Sprintf("💳 <b>Transfer reported</b>\nOrder %s\nAmount: %s",
		payment.OrderNumber, FormatPrice(payment.Amount))
	return s.SendToAdmin(text)
}
