// internal/services/chat_service.go
package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/reelshop/internal/ai"
	"github.com/javajoker/reelshop/internal/metrics"
	"github.com/javajoker/reelshop/internal/models"
	"github.com/javajoker/reelshop/internal/navigation"
	"github.com/javajoker/reelshop/internal/store"
	"github.com/javajoker/reelshop/internal/utils"
)

type ChatService struct {
	store   *store.Store
	ai      ai.Client
	metrics *metrics.AppMetrics
	now     Clock
}

type OpenChatRequest struct {
	UserID    string `json:"userId" validate:"required"`
	ProductID string `json:"productId,omitempty"`
}

type SendTextRequest struct {
	Text string `json:"text" validate:"required,max=4000"`
}

type SendAudioRequest struct {
	AudioURL        string `json:"audioUrl" validate:"required"`
	DurationSeconds int    `json:"duration" validate:"gte=0,lte=600"`
}

// PreOrderLine selects a quantity of one cart line for a pre-order.
type PreOrderLine struct {
	ProductID   string `json:"productId" validate:"required"`
	VariantName string `json:"variantName" validate:"required"`
	Size        string `json:"size,omitempty"`
	PackID      string `json:"packId,omitempty"`
	Quantity    int    `json:"quantity" validate:"gte=1"`
}

// SendPreOrderRequest orders goods of one creator through chat. Without
// Items, every cart line of the creator is ordered.
type SendPreOrderRequest struct {
	CreatorID     string         `json:"creatorId" validate:"required"`
	SalespersonID string         `json:"salespersonId,omitempty"`
	Note          string         `json:"note,omitempty" validate:"max=1000"`
	Items         []PreOrderLine `json:"items,omitempty" validate:"omitempty,dive"`
}

type TranslateRequest struct {
	Language models.Language `json:"language" validate:"required,language"`
}

type ChatSummary struct {
	ID            string             `json:"id"`
	Other         models.UserSummary `json:"other"`
	ProductID     string             `json:"productId,omitempty"`
	LastMessage   string             `json:"lastMessage"`
	LastMessageAt *time.Time         `json:"lastMessageAt,omitempty"`
	MessageCount  int                `json:"messageCount"`
	Archived      bool               `json:"archived"`
}

type ChatView struct {
	models.Chat
	Other    models.UserSummary `json:"other"`
	Archived bool               `json:"archived"`
}

// PreOrderResult is what SendPreOrder produced.
type PreOrderResult struct {
	ChatID  string             `json:"chatId"`
	Message models.ChatMessage `json:"message"`
	Edited  bool               `json:"edited"`
	Sale    *models.SaleRecord `json:"sale,omitempty"`
}

func NewChatService(s *store.Store, client ai.Client, m *metrics.AppMetrics, now Clock) *ChatService {
	return &ChatService{store: s, ai: client, metrics: m, now: now}
}

// Chats lists the current user's chats, most recent activity first.
func (s *ChatService) Chats(includeArchived bool) ([]ChatSummary, error) {
	var out []ChatSummary
	var err error
	s.store.View(func(st *store.AppState) {
		me, uerr := currentUser(st)
		if uerr != nil {
			err = uerr
			return
		}
		out = []ChatSummary{}
		for i := range st.Chats {
			chat := &st.Chats[i]
			if !chat.HasParticipant(me.ID) {
				continue
			}
			archived := st.ArchivedChatIDs.Has(chat.ID)
			if archived && !includeArchived {
				continue
			}
			summary := ChatSummary{
				ID:           chat.ID,
				Other:        summaryOf(st, chat.OtherParticipant(me.ID)),
				ProductID:    chat.ProductID,
				MessageCount: len(chat.Messages),
				Archived:     archived,
			}
			if n := len(chat.Messages); n > 0 {
				last := chat.Messages[n-1]
				at := last.Timestamp
				summary.LastMessage = last.Preview()
				summary.LastMessageAt = &at
			}
			out = append(out, summary)
		}
	})
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].LastMessageAt, out[j].LastMessageAt
		if a == nil || b == nil {
			return b == nil && a != nil
		}
		return a.After(*b)
	})
	return out, err
}

func summaryOf(st *store.AppState, userID string) models.UserSummary {
	if u := st.User(userID); u != nil {
		return u.Summary()
	}
	return models.UserSummary{ID: userID}
}

// participantChat returns chatID if the current user takes part in it.
func participantChat(st *store.AppState, chatID string) (*models.User, *models.Chat, error) {
	me, err := currentUser(st)
	if err != nil {
		return nil, nil, err
	}
	chat := st.Chat(chatID)
	if chat == nil || !chat.HasParticipant(me.ID) {
		return nil, nil, ErrChatNotFound
	}
	return me, chat, nil
}

func (s *ChatService) Chat(chatID string) (*ChatView, error) {
	var view *ChatView
	var err error
	s.store.View(func(st *store.AppState) {
		me, chat, cerr := participantChat(st, chatID)
		if cerr != nil {
			err = cerr
			return
		}
		view = &ChatView{
			Chat:     copyChat(chat),
			Other:    summaryOf(st, chat.OtherParticipant(me.ID)),
			Archived: st.ArchivedChatIDs.Has(chat.ID),
		}
	})
	return view, err
}

func copyChat(c *models.Chat) models.Chat {
	out := *c
	out.Messages = make([]models.ChatMessage, len(c.Messages))
	copy(out.Messages, c.Messages)
	return out
}

// findOrCreateChat returns the chat between a and b about productID,
// creating it when missing. An empty productID is the general chat.
func findOrCreateChat(st *store.AppState, a, b, productID string) *models.Chat {
	for i := range st.Chats {
		if st.Chats[i].Between(a, b) && st.Chats[i].ProductID == productID {
			return &st.Chats[i]
		}
	}
	st.Chats = append(st.Chats, models.Chat{
		ID:             newID(),
		ParticipantIDs: [2]string{a, b},
		ProductID:      productID,
		Messages:       []models.ChatMessage{},
	})
	return &st.Chats[len(st.Chats)-1]
}

// OpenChat finds or starts a chat with another user, optionally about a
// product, and opens it.
func (s *ChatService) OpenChat(req *OpenChatRequest) (*ChatView, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var chatID string
	err := s.store.Update("chat.open", func(st *store.AppState) error {
		me, err := currentUser(st)
		if err != nil {
			return err
		}
		if me.ID == req.UserID {
			return ErrForbidden
		}
		if _, err := userRef(st, req.UserID); err != nil {
			return err
		}
		if req.ProductID != "" && st.Product(req.ProductID) == nil {
			return ErrProductNotFound
		}

		chat := findOrCreateChat(st, me.ID, req.UserID, req.ProductID)
		chatID = chat.ID
		st.ArchivedChatIDs.Remove(chat.ID)
		st.Navigation.Push(navigation.ViewChat, navigation.Props{"chatId": chat.ID})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Chat(chatID)
}

func (s *ChatService) SendText(chatID string, req *SendTextRequest) (*models.ChatMessage, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return s.send("chat.send_text", chatID, models.TextBody{Text: strings.TrimSpace(req.Text)})
}

func (s *ChatService) SendAudio(chatID string, req *SendAudioRequest) (*models.ChatMessage, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return s.send("chat.send_audio", chatID, models.AudioBody{AudioURL: req.AudioURL, DurationSeconds: req.DurationSeconds})
}

func (s *ChatService) send(reason, chatID string, body models.MessageBody) (*models.ChatMessage, error) {
	var msg models.ChatMessage
	err := s.store.Update(reason, func(st *store.AppState) error {
		me, chat, err := participantChat(st, chatID)
		if err != nil {
			return err
		}
		msg = models.ChatMessage{ID: newID(), SenderID: me.ID, Timestamp: s.now(), Body: body}
		chat.Messages = append(chat.Messages, msg)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// ToggleArchive archives or restores a chat and reports the new state.
func (s *ChatService) ToggleArchive(chatID string) (bool, error) {
	var archived bool
	err := s.store.Update("chat.archive", func(st *store.AppState) error {
		if _, _, err := participantChat(st, chatID); err != nil {
			return err
		}
		archived = st.ArchivedChatIDs.Toggle(chatID)
		return nil
	})
	return archived, err
}

// BeginPreOrderEdit loads a sent pre-order back into the cart and opens the
// basket. The next SendPreOrder rewrites that message instead of sending a
// new one.
func (s *ChatService) BeginPreOrderEdit(chatID, messageID string) (NavigationState, error) {
	var out NavigationState
	err := s.store.Update("chat.pre_order_edit", func(st *store.AppState) error {
		me, chat, err := participantChat(st, chatID)
		if err != nil {
			return err
		}
		msg := chat.Message(messageID)
		if msg == nil {
			return ErrMessageNotFound
		}
		body, ok := msg.Body.(models.PreOrderBody)
		if !ok {
			return ErrNotPreOrder
		}
		if msg.SenderID != me.ID {
			return ErrForbidden
		}

		for _, item := range body.PreOrder.Items {
			setCartQuantity(st.ActiveCart(), models.CartItem{
				ProductID:   item.ProductID,
				VariantName: item.VariantName,
				Size:        item.Size,
				PackID:      item.PackID,
				Quantity:    item.Quantity,
			})
		}
		st.EditingPreOrder = &store.PreOrderEdit{ChatID: chatID, MessageID: messageID}
		st.Navigation.Push(navigation.ViewBasket, navigation.Props{
			"editingPreOrder": map[string]string{"chatId": chatID, "messageId": messageID},
		})
		out = snapshotNavigation(st)
		return nil
	})
	return out, err
}

// setCartQuantity makes the cart hold item.Quantity of item, keeping any
// special price already on the line.
func setCartQuantity(cart *[]models.CartItem, item models.CartItem) {
	key := item.Key()
	for i := range *cart {
		if (*cart)[i].Key() == key {
			if (*cart)[i].Quantity < item.Quantity {
				(*cart)[i].Quantity = item.Quantity
			}
			return
		}
	}
	*cart = append(*cart, item)
}

// deductCart removes ordered quantities from the cart, dropping lines that
// reach zero.
func deductCart(cart *[]models.CartItem, ordered []models.PreOrderItem) {
	for _, item := range ordered {
		key := models.NewCartKey(item.ProductID, item.VariantName, item.Size, item.PackID)
		for i := range *cart {
			if (*cart)[i].Key() != key {
				continue
			}
			(*cart)[i].Quantity -= item.Quantity
			if (*cart)[i].Quantity <= 0 {
				*cart = append((*cart)[:i:i], (*cart)[i+1:]...)
			}
			break
		}
	}
}

// preOrderItems prices the requested lines, or every cart line of the
// creator when none are given.
func preOrderItems(st *store.AppState, creatorID string, lines []PreOrderLine) ([]models.PreOrderItem, decimal.Decimal, error) {
	var selected []models.CartItem
	if len(lines) == 0 {
		for _, item := range *st.ActiveCart() {
			if p := st.Product(item.ProductID); p != nil && p.Creator.ID == creatorID {
				selected = append(selected, item)
			}
		}
	} else {
		for _, l := range lines {
			item := models.CartItem{ProductID: l.ProductID, VariantName: l.VariantName, Size: l.Size, PackID: l.PackID, Quantity: l.Quantity}
			for _, existing := range *st.ActiveCart() {
				if existing.Key() == item.Key() {
					item.SpecialPrice = existing.SpecialPrice
					break
				}
			}
			selected = append(selected, item)
		}
	}
	if len(selected) == 0 {
		return nil, decimal.Zero, ErrCartEmpty
	}

	items := make([]models.PreOrderItem, 0, len(selected))
	for _, item := range selected {
		product := st.Product(item.ProductID)
		if product == nil || product.Creator.ID != creatorID {
			return nil, decimal.Zero, ErrProductNotFound
		}
		line := describeLine(st, item)
		items = append(items, models.PreOrderItem{
			ProductID:    item.ProductID,
			ProductName:  line.ProductName,
			VariantName:  item.VariantName,
			Size:         item.Size,
			PackID:       item.PackID,
			PackName:     line.PackName,
			Quantity:     item.Quantity,
			PricePerUnit: line.UnitPrice,
		})
	}
	return items, subtotal(st, selected).Round(2), nil
}

// preOrderRecipient picks who receives the pre-order: the chosen
// salesperson, else the creator, never the sender.
func preOrderRecipient(me *models.User, creatorID, salespersonID string) (string, error) {
	recipient := salespersonID
	if recipient == "" || recipient == me.ID {
		recipient = creatorID
	}
	if recipient == me.ID {
		return "", ErrForbidden
	}
	return recipient, nil
}

// SendPreOrder sends a pre-order for one creator's goods. While a pre-order
// edit is open it rewrites that message in place; otherwise it appends to
// the general chat with the recipient. Ordered quantities leave the cart.
func (s *ChatService) SendPreOrder(req *SendPreOrderRequest) (*PreOrderResult, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var result PreOrderResult
	err := s.store.Update("chat.pre_order", func(st *store.AppState) error {
		me, err := currentUser(st)
		if err != nil {
			return err
		}
		if _, err := userRef(st, req.CreatorID); err != nil {
			return err
		}
		var salesperson *models.User
		if req.SalespersonID != "" {
			if salesperson, err = userRef(st, req.SalespersonID); err != nil {
				return err
			}
		}
		recipient, err := preOrderRecipient(me, req.CreatorID, req.SalespersonID)
		if err != nil {
			return err
		}
		items, total, err := preOrderItems(st, req.CreatorID, req.Items)
		if err != nil {
			return err
		}

		now := s.now()
		order := models.PreOrder{
			CreatorID:     req.CreatorID,
			SalespersonID: req.SalespersonID,
			Items:         items,
			TotalAmount:   total.InexactFloat64(),
			Note:          strings.TrimSpace(req.Note),
		}

		var chat *models.Chat
		var msg *models.ChatMessage
		if edit := st.EditingPreOrder; edit != nil {
			if chat = st.Chat(edit.ChatID); chat == nil || !chat.HasParticipant(me.ID) {
				return ErrChatNotFound
			}
			if msg = chat.Message(edit.MessageID); msg == nil {
				return ErrMessageNotFound
			}
			if _, ok := msg.Body.(models.PreOrderBody); !ok {
				return ErrNotPreOrder
			}
			if msg.SenderID != me.ID {
				return ErrForbidden
			}
			order.UpdatedAt = &now
			msg.Body = models.PreOrderBody{PreOrder: order}
			result.Edited = true
			st.EditingPreOrder = nil
		} else {
			chat = findOrCreateChat(st, me.ID, recipient, "")
			chat.Messages = append(chat.Messages, models.ChatMessage{
				ID:        newID(),
				SenderID:  me.ID,
				Timestamp: now,
				Body:      models.PreOrderBody{PreOrder: order},
			})
			msg = &chat.Messages[len(chat.Messages)-1]
		}
		result.ChatID = chat.ID
		result.Message = *msg

		if salesperson != nil && salesperson.Role == models.RoleSalesRep && salesperson.CommissionRate > 0 {
			sale := models.SaleRecord{
				ID:               newID(),
				SalespersonID:    salesperson.ID,
				BrandOwnerID:     req.CreatorID,
				Items:            make([]models.SaleLineItem, 0, len(items)),
				TotalAmount:      order.TotalAmount,
				CommissionAmount: total.Mul(decimal.NewFromFloat(salesperson.CommissionRate)).Div(decimal.NewFromInt(100)).Round(2).InexactFloat64(),
				Timestamp:        now,
			}
			for _, item := range items {
				sale.Items = append(sale.Items, models.SaleLineItem{
					ProductID:    item.ProductID,
					ProductName:  item.ProductName,
					VariantName:  item.VariantName,
					Size:         item.Size,
					PackName:     item.PackName,
					Quantity:     item.Quantity,
					PricePerUnit: item.PricePerUnit,
				})
			}
			st.Sales = append(st.Sales, sale)
			result.Sale = &sale
		}

		deductCart(st.ActiveCart(), items)
		st.Navigation.Push(navigation.ViewChat, navigation.Props{"chatId": chat.ID})
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Sale != nil {
		s.metrics.RecordSale(context.Background(), "pre_order", result.Sale.TotalAmount, result.Sale.CommissionAmount)
	}
	return &result, nil
}

// Translate renders a text message in lang. Generation failures are logged
// and reported as ErrGenerationFailed.
func (s *ChatService) Translate(ctx context.Context, chatID, messageID string, lang models.Language) (string, error) {
	if !lang.Valid() {
		return "", fmt.Errorf("validation failed: unsupported language %q", lang)
	}

	var text string
	var err error
	s.store.View(func(st *store.AppState) {
		_, chat, cerr := participantChat(st, chatID)
		if cerr != nil {
			err = cerr
			return
		}
		msg := chat.Message(messageID)
		if msg == nil {
			err = ErrMessageNotFound
			return
		}
		body, ok := msg.Body.(models.TextBody)
		if !ok {
			err = ErrNotTranslatable
			return
		}
		text = body.Text
	})
	if err != nil {
		return "", err
	}

	translated, err := s.ai.Translate(ctx, text, lang)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"chat_id":    chatID,
			"message_id": messageID,
			"language":   lang,
		}).WithError(err).Error("Failed to translate chat message")
		return "", ErrGenerationFailed
	}
	return translated, nil
}
