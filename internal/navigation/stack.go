// internal/navigation/stack.go
package navigation

// View names a screen of the client.
type View string

const (
	ViewFeed          View = "feed"
	ViewProfile       View = "profile"
	ViewProduct       View = "product"
	ViewDeck          View = "deck"
	ViewBasket        View = "basket"
	ViewChatList      View = "chatList"
	ViewChat          View = "chat"
	ViewLive          View = "live"
	ViewStudio        View = "studio"
	ViewNotifications View = "notifications"
	ViewSettings      View = "settings"
	ViewSales         View = "sales"
	ViewLogin         View = "login"
	ViewRegister      View = "register"
)

func (v View) Valid() bool {
	switch v {
	case ViewFeed, ViewProfile, ViewProduct, ViewDeck, ViewBasket, ViewChatList, ViewChat,
		ViewLive, ViewStudio, ViewNotifications, ViewSettings, ViewSales, ViewLogin, ViewRegister:
		return true
	}
	return false
}

type Props map[string]interface{}

type Frame struct {
	View  View  `json:"view"`
	Props Props `json:"props"`
}

// Stack is the view history. It always holds at least one frame; the last
// frame is the active view.
type Stack struct {
	frames []Frame
}

func New() *Stack {
	return NewAt(ViewFeed, nil)
}

func NewAt(view View, props Props) *Stack {
	return &Stack{frames: []Frame{newFrame(view, props)}}
}

func newFrame(view View, props Props) Frame {
	if props == nil {
		props = Props{}
	}
	return Frame{View: view, Props: props}
}

func (s *Stack) Push(view View, props Props) {
	s.frames = append(s.frames, newFrame(view, props))
}

// Pop removes the active frame and returns it. The root frame is never
// removed; popping it reports false.
func (s *Stack) Pop() (Frame, bool) {
	if len(s.frames) <= 1 {
		return Frame{}, false
	}
	last := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	return last, true
}

// ResetToRoot replaces the history with a single frame for view. It does
// nothing in public shared-link mode or when view is already the only frame.
func (s *Stack) ResetToRoot(view View, publicMode bool) bool {
	if publicMode {
		return false
	}
	if len(s.frames) == 1 && s.frames[0].View == view {
		return false
	}
	s.frames = []Frame{newFrame(view, nil)}
	return true
}

// Replace unconditionally resets the history to one frame.
func (s *Stack) Replace(view View, props Props) {
	s.frames = []Frame{newFrame(view, props)}
}

func (s *Stack) Current() Frame {
	return s.frames[len(s.frames)-1]
}

func (s *Stack) Len() int {
	return len(s.frames)
}

func (s *Stack) Frames() []Frame {
	out := make([]Frame, len(s.frames))
	copy(out, s.frames)
	return out
}
