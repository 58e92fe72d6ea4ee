package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/calvinalkan/slotarena/internal/catalog"
	"github.com/calvinalkan/slotarena/pkg/arena"
	"github.com/calvinalkan/slotarena/pkg/arena/identity"
	"github.com/calvinalkan/slotarena/pkg/arena/key"
	"github.com/calvinalkan/slotarena/pkg/arena/version"
)

var (
	ErrUsage          = errors.New("usage")
	ErrUnknownKey     = errors.New("unknown key (use a key printed by insert or parse)")
	ErrNotFound       = errors.New("no live value for key")
	ErrUnknownCommand = errors.New("unknown command (type 'help')")
)

// interpreter executes one REPL line against an arena.
type interpreter interface {
	// exec runs line and reports whether the session should end.
	exec(o *IO, line string) (quit bool, err error)
	describe() string
}

var replCommands = []string{
	"insert", "get", "raw", "remove", "delete", "parse", "ls", "rev", "retain",
	"drain", "reserve", "clear", "len", "info", "validate", "help", "exit",
}

const replHelp = `Commands:
  insert <value>      Insert a value, print its key
  get <key>           Look up a value by key (e.g. 3v1)
  raw <index>         Look up by bare slot index, ignoring versions
  remove <key>        Remove and print a value
  delete <key>        Remove a value, report whether it existed
  parse <index>       Build the key of the live value at index
  ls                  List entries front to back
  rev                 List entries back to front
  retain <substr>     Keep only values containing substr
  drain [substr]      Remove and print all values, or those containing substr
  reserve <n>         Reserve room for n more values
  clear               Drop all values and slots (forgets issued keys)
  len                 Print the number of live values
  info                Print storage statistics
  validate            Check internal invariants
  help                Show this help
  exit / quit / q     Exit`

// newSession builds an interpreter over a string-valued arena of the named
// engine and version.
func newSession(engineName, versionName string) (interpreter, error) {
	switch versionName {
	case catalog.Default:
		return newTypedSession[version.Default](engineName, versionName)
	case catalog.Tiny:
		return newTypedSession[version.Tiny](engineName, versionName)
	case catalog.Unversioned:
		return newTypedSession[version.Unversioned](engineName, versionName)
	default:
		return nil, catalog.ValidateVersion(versionName)
	}
}

type session[V version.Version[V]] struct {
	name  string
	arena arena.Engine[string, V]
	// keys maps the printed form of every key handed out, live or stale.
	keys map[string]key.Key[V]
}

func newTypedSession[V version.Version[V]](engineName, versionName string) (*session[V], error) {
	a, err := catalog.New[string, V](engineName, identity.New())
	if err != nil {
		return nil, err
	}

	return &session[V]{
		name:  engineName + "/" + versionName,
		arena: a,
		keys:  make(map[string]key.Key[V]),
	}, nil
}

func (s *session[V]) describe() string { return s.name }

func (s *session[V]) exec(o *IO, line string) (bool, error) {
	cmd, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(cmd) {
	case "":
		return false, nil
	case "exit", "quit", "q":
		return true, nil
	case "help", "?":
		o.Println(replHelp)
	case "insert", "put":
		if rest == "" {
			return false, fmt.Errorf("%w: insert <value>", ErrUsage)
		}

		k := s.arena.Insert(rest)
		s.keys[k.String()] = k
		o.Println(k)
	case "get":
		k, err := s.lookup(rest)
		if err != nil {
			return false, err
		}

		v, ok := s.arena.Get(k)
		if !ok {
			return false, fmt.Errorf("%w: %s", ErrNotFound, rest)
		}

		o.Println(v)
	case "raw":
		idx, err := parseIndex(rest, "raw <index>")
		if err != nil {
			return false, err
		}

		v, ok := s.arena.Get(key.Index[V](idx))
		if !ok {
			return false, fmt.Errorf("%w: index %d", ErrNotFound, idx)
		}

		o.Println(v)
	case "remove", "rm":
		k, err := s.lookup(rest)
		if err != nil {
			return false, err
		}

		v, ok := s.arena.TryRemove(k)
		if !ok {
			return false, fmt.Errorf("%w: %s", ErrNotFound, rest)
		}

		o.Println("removed", v)
	case "delete", "del":
		k, err := s.lookup(rest)
		if err != nil {
			return false, err
		}

		o.Println(s.arena.Delete(k))
	case "parse":
		idx, err := parseIndex(rest, "parse <index>")
		if err != nil {
			return false, err
		}

		k, ok := s.arena.ParseKey(idx)
		if !ok {
			return false, fmt.Errorf("%w: index %d", ErrNotFound, idx)
		}

		s.keys[k.String()] = k
		o.Println(k)
	case "ls", "list":
		for k, v := range s.arena.All() {
			o.Printf("%s\t%s\n", k, *v)
		}
	case "rev":
		for k, v := range s.arena.Backward() {
			o.Printf("%s\t%s\n", k, *v)
		}
	case "retain":
		if rest == "" {
			return false, fmt.Errorf("%w: retain <substr>", ErrUsage)
		}

		before := s.arena.Len()
		s.arena.Retain(func(v *string) bool { return strings.Contains(*v, rest) })
		o.Printf("removed %d\n", before-s.arena.Len())
	case "drain":
		if rest == "" {
			for v := range s.arena.Drain() {
				o.Println(v)
			}

			break
		}

		for v := range s.arena.DrainFilter(func(v *string) bool { return strings.Contains(*v, rest) }) {
			o.Println(v)
		}
	case "reserve":
		n, err := parseIndex(rest, "reserve <n>")
		if err != nil {
			return false, err
		}

		s.arena.Reserve(n)
		o.Printf("capacity %d\n", s.arena.Capacity())
	case "clear":
		s.arena.Clear()
		clear(s.keys)
	case "len", "count":
		o.Println(s.arena.Len())
	case "info":
		st := s.arena.Stats()
		o.Printf("engine:      %s\n", s.name)
		o.Printf("len:         %d\n", st.Len)
		o.Printf("capacity:    %d\n", s.arena.Capacity())
		o.Printf("slots:       %d\n", st.Slots)
		o.Printf("vacant:      %d\n", st.Vacant)
		o.Printf("retired:     %d\n", st.Retired)
		o.Printf("free blocks: %d\n", st.FreeBlocks)
	case "validate":
		err := s.arena.Validate()
		if err != nil {
			return false, err
		}

		o.Println("ok")
	default:
		return false, fmt.Errorf("%w: %s", ErrUnknownCommand, cmd)
	}

	return false, nil
}

func (s *session[V]) lookup(text string) (key.Key[V], error) {
	if text == "" {
		return key.Key[V]{}, fmt.Errorf("%w: <key> required", ErrUsage)
	}

	k, ok := s.keys[text]
	if !ok {
		return key.Key[V]{}, fmt.Errorf("%w: %s", ErrUnknownKey, text)
	}

	return k, nil
}

func parseIndex(text, usage string) (int, error) {
	n, err := strconv.Atoi(text)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s", ErrUsage, usage)
	}

	return n, nil
}
