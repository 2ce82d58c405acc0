// internal/services/social_service.go
package services

import (
	"sort"
	"time"

	"github.com/javajoker/reelshop/internal/i18n"
	"github.com/javajoker/reelshop/internal/models"
	"github.com/javajoker/reelshop/internal/navigation"
	"github.com/javajoker/reelshop/internal/store"
)

type SocialService struct {
	store *store.Store
}

// Profile is a user's public page.
type Profile struct {
	User           models.User      `json:"user"`
	Products       []models.Product `json:"products"`
	IsFollowing    bool             `json:"isFollowing"`
	IsSelf         bool             `json:"isSelf"`
	FollowerCount  int              `json:"followerCount"`
	FollowingCount int              `json:"followingCount"`
}

func NewSocialService(s *store.Store) *SocialService {
	return &SocialService{store: s}
}

// FollowToggle follows or unfollows target. Both sides of the edge change
// in the same commit. It reports whether the current user now follows.
func (s *SocialService) FollowToggle(targetID string) (bool, error) {
	var following bool
	err := s.store.Update("social.follow", func(st *store.AppState) error {
		me, err := currentUser(st)
		if err != nil {
			return err
		}
		if me.ID == targetID {
			return ErrSelfFollow
		}
		target, err := userRef(st, targetID)
		if err != nil {
			return err
		}

		if me.IsFollowing(target.ID) {
			me.FollowingIDs = models.RemoveID(me.FollowingIDs, target.ID)
			target.FollowerIDs = models.RemoveID(target.FollowerIDs, me.ID)
			following = false
		} else {
			me.FollowingIDs = models.AppendUnique(me.FollowingIDs, target.ID)
			target.FollowerIDs = models.AppendUnique(target.FollowerIDs, me.ID)
			following = true
		}
		return nil
	})
	return following, err
}

func (s *SocialService) Profile(userID string) (*Profile, error) {
	var profile *Profile
	var err error
	s.store.View(func(st *store.AppState) {
		user := st.User(userID)
		if user == nil {
			err = ErrUserNotFound
			return
		}
		profile = &Profile{
			User:           user.Public(),
			Products:       []models.Product{},
			FollowerCount:  len(user.FollowerIDs),
			FollowingCount: len(user.FollowingIDs),
		}
		if me := st.CurrentUser(); me != nil {
			profile.IsSelf = me.ID == user.ID
			profile.IsFollowing = me.IsFollowing(user.ID)
		}
		for _, p := range st.Products {
			if p.Creator.ID == user.ID {
				profile.Products = append(profile.Products, p)
			}
		}
	})
	return profile, err
}

// fanout appends one unread notification per follower of creator, worded in
// the follower's language. It returns the number of notifications created.
func fanout(st *store.AppState, creator *models.User, link models.NotificationLink, entityName string, now time.Time) int {
	key := i18n.KeyNotifyNewProduct
	if link.Kind == models.LinkKindDeck {
		key = i18n.KeyNotifyNewDeck
	}

	count := 0
	for _, followerID := range creator.FollowerIDs {
		lang := st.Language
		if follower := st.User(followerID); follower != nil && follower.Language.Valid() {
			lang = follower.Language
		}
		st.Notifications = append(st.Notifications, models.Notification{
			ID:          newID(),
			RecipientID: followerID,
			FromUser:    creator.Summary(),
			Message:     i18n.T(string(lang), key, creator.Username, entityName),
			Link:        link,
			Timestamp:   now,
		})
		count++
	}
	return count
}

// Notifications returns the current user's notifications, newest first.
func (s *SocialService) Notifications() ([]models.Notification, int, error) {
	var out []models.Notification
	unread := 0
	var err error
	s.store.View(func(st *store.AppState) {
		me, uerr := currentUser(st)
		if uerr != nil {
			err = uerr
			return
		}
		out = []models.Notification{}
		for _, n := range st.Notifications {
			if n.RecipientID != me.ID {
				continue
			}
			out = append(out, n)
			if !n.Read {
				unread++
			}
		}
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, unread, err
}

// OpenNotification marks a notification read and navigates to what it
// links: the product in the feed, or the creator's deck. A deck that no
// longer exists falls back to the creator's profile.
func (s *SocialService) OpenNotification(id string) (NavigationState, error) {
	var out NavigationState
	err := s.store.Update("notification.open", func(st *store.AppState) error {
		me, err := currentUser(st)
		if err != nil {
			return err
		}
		var n *models.Notification
		for i := range st.Notifications {
			if st.Notifications[i].ID == id && st.Notifications[i].RecipientID == me.ID {
				n = &st.Notifications[i]
				break
			}
		}
		if n == nil {
			return ErrNotificationNotFound
		}

		n.Read = true
		switch n.Link.Kind {
		case models.LinkKindProduct:
			st.Navigation.Push(navigation.ViewFeed, navigation.Props{
				"productId":   n.Link.ID,
				"variantName": n.Link.VariantName,
			})
		case models.LinkKindDeck:
			creatorID := n.FromUser.ID
			creator := st.User(creatorID)
			if creator != nil && creator.Deck(n.Link.ID) != nil {
				st.Navigation.Push(navigation.ViewDeck, navigation.Props{"userId": creatorID, "deckId": n.Link.ID})
			} else {
				st.Navigation.Push(navigation.ViewProfile, navigation.Props{"userId": creatorID})
			}
		}
		out = snapshotNavigation(st)
		return nil
	})
	return out, err
}

func (s *SocialService) MarkAllRead() error {
	return s.store.Update("notification.read_all", func(st *store.AppState) error {
		me, err := currentUser(st)
		if err != nil {
			return err
		}
		for i := range st.Notifications {
			if st.Notifications[i].RecipientID == me.ID {
				st.Notifications[i].Read = true
			}
		}
		return nil
	})
}
