package watch

import (
	"unicode"
	"unicode/utf8"
)

// KeyKind classifies an input key independently of the terminal library.
type KeyKind int

const (
	KeyOther KeyKind = iota
	KeyRune
	KeyEnter
	KeyEsc
	KeyBackspace
	KeyUp
	KeyDown
)

// Key is one keyboard event. Rune is set for KeyRune.
type Key struct {
	Kind KeyKind
	Rune rune
}

// RuneKey returns a KeyRune event for r.
func RuneKey(r rune) Key { return Key{Kind: KeyRune, Rune: r} }

// Normal-mode letter commands. Matching is case-insensitive.
const (
	cmdQuit     = 'q'
	cmdRefresh  = 'r'
	cmdNew      = 'n'
	cmdDelete   = 'd'
	cmdMoveUp   = 'u'
	cmdMoveDown = 'j'
)

// HandleKey applies one key event to the state. It returns a Job when the
// event dispatched a refresh, and the persistence error if saving failed.
// Keys with no rule in the current mode are ignored.
func (s *State) HandleKey(k Key) (Job, error) {
	switch m := s.mode.(type) {
	case Adding:
		return s.handleAddingKey(m, k)
	default:
		return s.handleNormalKey(k)
	}
}

func (s *State) handleNormalKey(k Key) (Job, error) {
	switch k.Kind {
	case KeyUp:
		s.MoveSelectionUp()
		return nil, nil
	case KeyDown:
		s.MoveSelectionDown()
		return nil, nil
	case KeyRune:
	default:
		return nil, nil
	}

	switch unicode.ToLower(k.Rune) {
	case cmdQuit:
		s.exit = true
	case cmdRefresh:
		return s.Refresh(), nil
	case cmdNew:
		s.mode = Adding{}
	case cmdDelete:
		return nil, s.DeleteSelected()
	case cmdMoveUp:
		return nil, s.MoveSelectedUp()
	case cmdMoveDown:
		return nil, s.MoveSelectedDown()
	}
	return nil, nil
}

func (s *State) handleAddingKey(m Adding, k Key) (Job, error) {
	switch k.Kind {
	case KeyEnter:
		s.mode = Normal{}
		if m.Input == "" {
			return nil, nil
		}
		s.logger.Info("adding stock", "code", m.Input)
		return s.AddStock(m.Input)
	case KeyEsc:
		s.mode = Normal{}
	case KeyRune:
		if unicode.IsPrint(k.Rune) {
			s.mode = Adding{Input: m.Input + string(k.Rune)}
		}
	case KeyBackspace:
		if m.Input != "" {
			_, size := utf8.DecodeLastRuneInString(m.Input)
			s.mode = Adding{Input: m.Input[:len(m.Input)-size]}
		}
	}
	return nil, nil
}

// HandleClick selects the list row at index. It only acts in Normal mode and
// ignores rows outside the list.
func (s *State) HandleClick(index int) {
	if _, ok := s.mode.(Normal); !ok {
		return
	}
	s.SelectRow(index)
}

// Tick advances the tick counter. Every EveryTicks-th tick in Normal mode
// dispatches a refresh.
func (s *State) Tick() Job {
	s.ticks++
	if s.ticks%s.everyTicks != 0 {
		return nil
	}
	if _, ok := s.mode.(Normal); !ok {
		return nil
	}
	return s.Refresh()
}
