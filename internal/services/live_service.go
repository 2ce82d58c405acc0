// internal/services/live_service.go
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/reelshop/internal/metrics"
	"github.com/javajoker/reelshop/internal/models"
	"github.com/javajoker/reelshop/internal/navigation"
	"github.com/javajoker/reelshop/internal/scheduler"
	"github.com/javajoker/reelshop/internal/store"
	"github.com/javajoker/reelshop/internal/utils"
)

type LiveService struct {
	deviceID  string
	store     *store.Store
	scheduler *scheduler.Scheduler
	metrics   *metrics.AppMetrics
	now       Clock
	logger    *logrus.Entry
}

type ScheduleStreamRequest struct {
	Title       string     `json:"title" validate:"required,min=2,max=120"`
	ScheduledAt *time.Time `json:"scheduledAt,omitempty"`
	ProductIDs  []string   `json:"productIds" validate:"required,min=1"`
}

type SetDiscountRequest struct {
	ProductID          string  `json:"productId" validate:"required"`
	DiscountPercentage float64 `json:"discountPercentage" validate:"gt=0,lte=100"`
	DurationMinutes    float64 `json:"durationMinutes" validate:"gt=0,lte=1440"`
}

type CommentRequest struct {
	Text string `json:"text" validate:"required,max=500"`
}

// StreamView is a stream as one viewer sees it.
type StreamView struct {
	models.LiveStream
	Host              models.UserSummary `json:"host"`
	PinnedIndex       int                `json:"pinnedIndex"`
	IsHost            bool               `json:"isHost"`
	DiscountRemaining float64            `json:"discountRemainingSeconds,omitempty"`
}

func NewLiveService(deviceID string, s *store.Store, sched *scheduler.Scheduler, m *metrics.AppMetrics, now Clock) *LiveService {
	svc := &LiveService{
		deviceID:  deviceID,
		store:     s,
		scheduler: sched,
		metrics:   m,
		now:       now,
		logger:    logrus.WithField("device_id", deviceID),
	}
	svc.resumeDiscounts()
	return svc
}

// resumeDiscounts re-arms the expiry of discounts loaded from a snapshot.
// Discounts that lapsed while the workspace was unloaded are cleared now.
func (s *LiveService) resumeDiscounts() {
	type loaded struct {
		streamID  string
		productID string
		remaining time.Duration
	}
	var discounts []loaded
	now := s.now()
	s.store.View(func(st *store.AppState) {
		for _, stream := range st.LiveStreams {
			if d := stream.ActiveDiscount; d != nil {
				discounts = append(discounts, loaded{stream.ID, d.ProductID, d.ExpiresAt.Sub(now)})
			}
		}
	})

	for _, d := range discounts {
		if d.remaining <= 0 {
			s.expireDiscount(d.streamID, d.productID)
			continue
		}
		streamID, productID := d.streamID, d.productID
		s.scheduler.Schedule(s.timerKey(streamID), d.remaining, func() {
			s.expireDiscount(streamID, productID)
		})
	}
}

func (s *LiveService) timerKey(streamID string) string {
	return scheduler.Key(s.deviceID, streamID)
}

// EffectivePinnedIndex is the showcase index a viewer sees: the host's pin
// while host-controlled, otherwise the viewer's own pin, otherwise 0.
func EffectivePinnedIndex(st *store.AppState, stream *models.LiveStream) int {
	if stream.IsHostControlled {
		if stream.HostPinnedProductIndex != nil {
			return *stream.HostPinnedProductIndex
		}
		return 0
	}
	if idx, ok := st.LocalPins[stream.ID]; ok {
		return idx
	}
	return 0
}

func (s *LiveService) view(st *store.AppState, stream *models.LiveStream) StreamView {
	v := StreamView{
		LiveStream:  *stream,
		Host:        summaryOf(st, stream.HostID),
		PinnedIndex: EffectivePinnedIndex(st, stream),
		IsHost:      st.CurrentUserID != "" && st.CurrentUserID == stream.HostID,
	}
	v.Comments = append([]models.LiveComment{}, stream.Comments...)
	if d := stream.ActiveDiscount; d != nil {
		if remaining := d.ExpiresAt.Sub(s.now()); remaining > 0 {
			v.DiscountRemaining = remaining.Seconds()
		}
	}
	return v
}

func (s *LiveService) Streams() []StreamView {
	var out []StreamView
	s.store.View(func(st *store.AppState) {
		out = make([]StreamView, 0, len(st.LiveStreams))
		for i := range st.LiveStreams {
			out = append(out, s.view(st, &st.LiveStreams[i]))
		}
	})
	return out
}

func (s *LiveService) Stream(streamID string) (*StreamView, error) {
	var out *StreamView
	s.store.View(func(st *store.AppState) {
		if stream := st.Stream(streamID); stream != nil {
			v := s.view(st, stream)
			out = &v
		}
	})
	if out == nil {
		return nil, ErrStreamNotFound
	}
	return out, nil
}

// hostStream returns the stream if the current user hosts it.
func hostStream(st *store.AppState, streamID string) (*models.LiveStream, error) {
	me, err := currentUser(st)
	if err != nil {
		return nil, err
	}
	stream := st.Stream(streamID)
	if stream == nil {
		return nil, ErrStreamNotFound
	}
	if stream.HostID != me.ID {
		return nil, ErrNotHost
	}
	return stream, nil
}

func (s *LiveService) ScheduleStream(req *ScheduleStreamRequest) (*models.LiveStream, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var stream models.LiveStream
	err := s.store.Update("live.schedule", func(st *store.AppState) error {
		me, err := currentUser(st)
		if err != nil {
			return err
		}
		if !me.Capabilities().CanHostLive {
			return ErrForbidden
		}
		showcase := []string{}
		for _, id := range req.ProductIDs {
			if st.Product(id) == nil {
				return ErrProductNotFound
			}
			showcase = models.AppendUnique(showcase, id)
		}

		stream = models.LiveStream{
			ID:                 newID(),
			HostID:             me.ID,
			Title:              strings.TrimSpace(req.Title),
			Status:             models.StreamStatusUpcoming,
			ScheduledAt:        req.ScheduledAt,
			ProductShowcaseIDs: showcase,
			Comments:           []models.LiveComment{},
		}
		st.LiveStreams = append(st.LiveStreams, stream)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &stream, nil
}

func (s *LiveService) StartStream(streamID string) error {
	return s.store.Update("live.start", func(st *store.AppState) error {
		stream, err := hostStream(st, streamID)
		if err != nil {
			return err
		}
		if err := stream.Transition(models.StreamStatusLive, s.now()); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidTransition, err)
		}
		return nil
	})
}

// EndStream ends a stream for good. Any discount ends with it.
func (s *LiveService) EndStream(streamID string) error {
	return s.store.Update("live.end", func(st *store.AppState) error {
		stream, err := hostStream(st, streamID)
		if err != nil {
			return err
		}
		if err := stream.Transition(models.StreamStatusEnded, s.now()); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidTransition, err)
		}
		stream.ActiveDiscount = nil
		s.scheduler.Cancel(s.timerKey(streamID))
		return nil
	})
}

// SetDiscount makes a showcase product the stream's only discount until
// the duration passes. A newer discount replaces the older one and its
// expiry timer, whatever product it was for.
func (s *LiveService) SetDiscount(streamID string, req *SetDiscountRequest) (*models.ActiveDiscount, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDiscount, err)
	}

	duration := time.Duration(req.DurationMinutes * float64(time.Minute))
	var discount models.ActiveDiscount
	err := s.store.Update("live.discount", func(st *store.AppState) error {
		stream, err := hostStream(st, streamID)
		if err != nil {
			return err
		}
		if stream.Status != models.StreamStatusLive {
			return ErrStreamNotLive
		}
		inShowcase := false
		for _, id := range stream.ProductShowcaseIDs {
			if id == req.ProductID {
				inShowcase = true
				break
			}
		}
		if !inShowcase {
			return ErrNotInShowcase
		}

		discount = models.ActiveDiscount{
			ProductID:          req.ProductID,
			DiscountPercentage: req.DiscountPercentage,
			ExpiresAt:          s.now().Add(duration),
		}
		stream.ActiveDiscount = &discount

		// Armed under the store lock so concurrent discounts keep their order.
		productID := req.ProductID
		s.scheduler.Schedule(s.timerKey(streamID), duration, func() {
			s.expireDiscount(streamID, productID)
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &discount, nil
}

// expireDiscount clears the stream's discount if it is still the one for
// productID.
func (s *LiveService) expireDiscount(streamID, productID string) {
	err := s.store.Update("live.discount_expired", func(st *store.AppState) error {
		stream := st.Stream(streamID)
		if stream == nil || stream.ActiveDiscount == nil || stream.ActiveDiscount.ProductID != productID {
			return errNoChange
		}
		stream.ActiveDiscount = nil
		return nil
	})
	if err != nil {
		return
	}

	s.metrics.RecordDiscountExpired(context.Background())
	s.logger.WithFields(logrus.Fields{
		"stream_id":  streamID,
		"product_id": productID,
	}).Info("Live discount expired")
}

// listPrice is what one unit of the option costs before any discount: the
// pack price for a pack, the product price otherwise.
func listPrice(product *models.Product, packID string) (float64, error) {
	if packID == "" {
		return product.Price, nil
	}
	pack := product.Pack(packID)
	if pack == nil {
		return 0, ErrInvalidOption
	}
	return pack.Price, nil
}

// DiscountedPrice is the price of the product, or of one of its packs when
// packID is set, with the stream's active discount applied. It reports false
// when no discount applies to the product.
func (s *LiveService) DiscountedPrice(streamID, productID, packID string) (float64, bool, error) {
	var price float64
	var discounted bool
	var err error
	s.store.View(func(st *store.AppState) {
		stream := st.Stream(streamID)
		if stream == nil {
			err = ErrStreamNotFound
			return
		}
		product := st.Product(productID)
		if product == nil {
			err = ErrProductNotFound
			return
		}
		price, err = listPrice(product, packID)
		if err != nil {
			return
		}
		if pct, ok := stream.DiscountFor(productID, s.now()); ok {
			price = applyDiscount(price, pct)
			discounted = true
		}
	})
	return price, discounted, err
}

func applyDiscount(price, percentage float64) float64 {
	factor := decimal.NewFromInt(100).Sub(decimal.NewFromFloat(percentage)).Div(decimal.NewFromInt(100))
	return decimal.NewFromFloat(price).Mul(factor).Round(2).InexactFloat64()
}

// ToggleHostControl switches between open pinning and host-only pinning.
// Taking control without a pin pins the first showcase product.
func (s *LiveService) ToggleHostControl(streamID string) (bool, error) {
	var controlled bool
	err := s.store.Update("live.host_control", func(st *store.AppState) error {
		stream, err := hostStream(st, streamID)
		if err != nil {
			return err
		}
		stream.IsHostControlled = !stream.IsHostControlled
		if stream.IsHostControlled && stream.HostPinnedProductIndex == nil {
			zero := 0
			stream.HostPinnedProductIndex = &zero
		}
		controlled = stream.IsHostControlled
		return nil
	})
	return controlled, err
}

// PinProduct features a showcase product. The host's pin is shared with
// every viewer; a viewer's pin is local and refused while the host has
// control.
func (s *LiveService) PinProduct(streamID string, index int) (int, error) {
	var effective int
	err := s.store.Update("live.pin", func(st *store.AppState) error {
		stream := st.Stream(streamID)
		if stream == nil {
			return ErrStreamNotFound
		}
		if index < 0 || index >= len(stream.ProductShowcaseIDs) {
			return ErrNotInShowcase
		}

		isHost := st.CurrentUserID != "" && st.CurrentUserID == stream.HostID
		switch {
		case isHost:
			idx := index
			stream.HostPinnedProductIndex = &idx
		case stream.IsHostControlled:
			return ErrPinLocked
		}
		if st.LocalPins == nil {
			st.LocalPins = make(map[string]int)
		}
		st.LocalPins[streamID] = index
		effective = EffectivePinnedIndex(st, stream)
		return nil
	})
	return effective, err
}

func (s *LiveService) AddComment(streamID string, req *CommentRequest) (*models.LiveComment, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var comment models.LiveComment
	err := s.store.Update("live.comment", func(st *store.AppState) error {
		me, err := currentUser(st)
		if err != nil {
			return err
		}
		stream := st.Stream(streamID)
		if stream == nil {
			return ErrStreamNotFound
		}
		if stream.Status != models.StreamStatusLive {
			return ErrStreamNotLive
		}
		comment = models.LiveComment{
			ID:        newID(),
			User:      me.Summary(),
			Text:      strings.TrimSpace(req.Text),
			Timestamp: s.now(),
		}
		stream.Comments = append(stream.Comments, comment)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (s *LiveService) Like(streamID string) (int, error) {
	var likes int
	err := s.store.Update("live.like", func(st *store.AppState) error {
		stream := st.Stream(streamID)
		if stream == nil {
			return ErrStreamNotFound
		}
		if stream.Status != models.StreamStatusLive {
			return ErrStreamNotLive
		}
		stream.LikesCount++
		likes = stream.LikesCount
		return nil
	})
	return likes, err
}

// Join enters a stream as a viewer and opens the live view.
func (s *LiveService) Join(streamID string) (*StreamView, error) {
	var out StreamView
	err := s.store.Update("live.join", func(st *store.AppState) error {
		stream := st.Stream(streamID)
		if stream == nil {
			return ErrStreamNotFound
		}
		if st.LiveStreamContextID != streamID {
			stream.ViewerCount++
		}
		st.LiveStreamContextID = streamID
		st.Navigation.Push(navigation.ViewLive, navigation.Props{"streamId": streamID})
		out = s.view(st, stream)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *LiveService) Leave(streamID string) error {
	err := s.store.Update("live.leave", func(st *store.AppState) error {
		stream := st.Stream(streamID)
		if stream == nil {
			return ErrStreamNotFound
		}
		if st.LiveStreamContextID != streamID {
			return errNoChange
		}
		if stream.ViewerCount > 0 {
			stream.ViewerCount--
		}
		st.LiveStreamContextID = ""
		if st.Navigation.Current().View == navigation.ViewLive {
			st.Navigation.Pop()
		}
		return nil
	})
	if err == errNoChange {
		return nil
	}
	return err
}

// BuyFromStream adds a showcase product to the cart at the price the stream
// offers right now.
func (s *LiveService) BuyFromStream(streamID string, req *AddToCartRequest) (*models.CartItem, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var added models.CartItem
	err := s.store.Update("live.buy", func(st *store.AppState) error {
		stream := st.Stream(streamID)
		if stream == nil {
			return ErrStreamNotFound
		}
		product := st.Product(req.ProductID)
		if product == nil {
			return ErrProductNotFound
		}

		r := *req
		r.SpecialPrice = nil
		if pct, ok := stream.DiscountFor(product.ID, s.now()); ok {
			base, err := listPrice(product, r.PackID)
			if err != nil {
				return err
			}
			price := applyDiscount(base, pct)
			r.SpecialPrice = &price
		}
		item, err := addToCart(st, &r)
		if err != nil {
			return err
		}
		added = item
		if st.PublicMode {
			st.Navigation.Push(navigation.ViewBasket, nil)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &added, nil
}

// Close cancels the expiry timers this workspace armed.
func (s *LiveService) Close() {
	s.store.View(func(st *store.AppState) {
		for _, stream := range st.LiveStreams {
			s.scheduler.Cancel(s.timerKey(stream.ID))
		}
	})
}
