// Package session реализует долговременное наблюдаемое хранилище сессии:
// bearer-токен и флаг "запомнить меня", зашифрованные на диске.
//
// Хранилище — единственный владелец токена в процессе. Все читатели получают
// актуальное значение через Token или подписку Watch; запись выполняется только
// методами Save и Clear. Save гарантирует долговечность до возврата управления:
// данные запечатываются и атомарно переименовываются на место до уведомления
// подписчиков.
package session

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/crypto/nacl/secretbox"

	"github.com/promoping/promoping-client/internal/lib/token"
)

const (
	keyFileName     = "session.key"
	sessionFileName = "session.dat"
	watchBuffer     = 16
)

// ErrCorruptedFile возвращается, когда файл сессии не удаётся распечатать.
var ErrCorruptedFile = errors.New("session file corrupted")

type persisted struct {
	Token      string `json:"token"`
	RememberMe bool   `json:"remember_me"`
}

// Store долговременное наблюдаемое хранилище сессии.
type Store struct {
	dir string
	key [32]byte
	log *slog.Logger

	mu       sync.Mutex
	token    string
	remember bool
	subs     map[int]chan string
	nextSub  int
}

// New открывает хранилище в каталоге dir, создавая его при необходимости.
// Ключ шифрования генерируется при первом запуске и хранится рядом с данными.
// Токен с истёкшим сроком действия (claim exp) отбрасывается при загрузке.
func New(dir string, log *slog.Logger) (*Store, error) {
	const op = "session.New"

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s := &Store{
		dir:  dir,
		log:  log,
		subs: make(map[int]chan string),
	}

	if err := s.loadKey(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.loadState(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if s.token != "" && token.Expired(s.token, time.Now()) {
		log.Info("stored token expired, clearing session")
		if err := s.Clear(); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	return s, nil
}

// Token возвращает актуальное значение токена ("" — сессии нет).
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// RememberMe возвращает сохранённый флаг "запомнить меня".
func (s *Store) RememberMe() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remember
}

// Watch возвращает канал значений токена. Первым приходит текущее значение,
// затем значение каждой записи в порядке применения. Канал закрывается
// при отмене ctx. Медленный подписчик теряет промежуточные значения,
// но всегда получает последнее.
func (s *Store) Watch(ctx context.Context) <-chan string {
	ch := make(chan string, watchBuffer)

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	ch <- s.token
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
		close(ch)
	}()
	return ch
}

// Save сохраняет токен и флаг rememberMe. Данные записаны на диск
// до возврата управления; подписчики уведомляются после записи.
// Повторный вызов с теми же значениями безопасен.
func (s *Store) Save(tok string, rememberMe bool) error {
	const op = "session.Save"

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persistLocked(persisted{Token: tok, RememberMe: rememberMe}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.token = tok
	s.remember = rememberMe
	s.notifyLocked(tok)
	return nil
}

// Clear удаляет токен и флаг. Подписчики получают одну пустую эмиссию,
// упорядоченную после всех предшествующих Save.
func (s *Store) Clear() error {
	const op = "session.Clear"

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(filepath.Join(s.dir, sessionFileName)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.token = ""
	s.remember = false
	s.notifyLocked("")
	return nil
}

func (s *Store) notifyLocked(tok string) {
	for _, ch := range s.subs {
		select {
		case ch <- tok:
		default:
			// Переполненный подписчик: вытесняем самое старое значение.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- tok:
			default:
			}
		}
	}
}

func (s *Store) loadKey() error {
	keyPath := filepath.Join(s.dir, keyFileName)
	raw, err := os.ReadFile(keyPath)
	if err == nil {
		if len(raw) != len(s.key) {
			return ErrCorruptedFile
		}
		copy(s.key[:], raw)
		return nil
	}
	if !os.IsNotExist(err) {
		return err
	}
	if _, err := io.ReadFull(rand.Reader, s.key[:]); err != nil {
		return err
	}
	return os.WriteFile(keyPath, s.key[:], 0o600)
}

func (s *Store) loadState() error {
	raw, err := os.ReadFile(filepath.Join(s.dir, sessionFileName))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	if len(raw) < 24 {
		return ErrCorruptedFile
	}
	var nonce [24]byte
	copy(nonce[:], raw[:24])
	plain, ok := secretbox.Open(nil, raw[24:], &nonce, &s.key)
	if !ok {
		return ErrCorruptedFile
	}

	var state persisted
	if err := json.Unmarshal(plain, &state); err != nil {
		return ErrCorruptedFile
	}
	s.token = state.Token
	s.remember = state.RememberMe
	return nil
}

// persistLocked запечатывает состояние и атомарно заменяет файл сессии.
func (s *Store) persistLocked(state persisted) error {
	plain, err := json.Marshal(state)
	if err != nil {
		return err
	}

	var nonce [24]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return err
	}
	sealed := secretbox.Seal(nonce[:], plain, &nonce, &s.key)

	target := filepath.Join(s.dir, sessionFileName)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, sealed, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, target)
}
