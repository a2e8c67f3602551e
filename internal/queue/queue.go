package queue

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"valorant-hub/internal/constants"
	"valorant-hub/internal/domain"
	"valorant-hub/internal/match"
	"valorant-hub/internal/repository"
)

var ErrNoGameIdentity = errors.New("a linked game account is required to queue")

// Snapshot is the waiting-pool view handed to the UI.
type Snapshot struct {
	Players  []domain.Player `json:"players"`
	Size     int             `json:"size"`
	Capacity int             `json:"capacity"`
}

// Manager holds the waiting pool and hands ten players to the match
// lifecycle when the pool fills.
type Manager struct {
	mu        sync.Mutex
	waiting   []domain.Player
	lifecycle *match.Lifecycle
	players   *repository.PlayerRepository
	logger    zerolog.Logger
	rng       *rand.Rand
}

func NewManager(lifecycle *match.Lifecycle, players *repository.PlayerRepository, logger zerolog.Logger) *Manager {
	return &Manager{
		lifecycle: lifecycle,
		players:   players,
		logger:    logger,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Join adds a player to the waiting pool. Already-queued players are a
// no-op; players without a linked game identity are rejected before
// they ever reach a ready check.
func (m *Manager) Join(player domain.Player) error {
	if !player.IsBot && !player.HasGameIdentity() {
		return ErrNoGameIdentity
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.waiting {
		if p.ID == player.ID {
			return nil
		}
	}

	m.waiting = append(m.waiting, player)
	m.logger.Info().Str("player_id", player.ID).Str("username", player.Username).Int("queue_size", len(m.waiting)).Msg("player joined queue")

	m.startIfFullLocked()
	return nil
}

// Leave removes a player from the pool; absent players are not an
// error.
func (m *Manager) Leave(playerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, p := range m.waiting {
		if p.ID == playerID {
			m.waiting = append(m.waiting[:i], m.waiting[i+1:]...)
			m.logger.Info().Str("player_id", playerID).Int("queue_size", len(m.waiting)).Msg("player left queue")
			return
		}
	}
}

// Requeue puts players back at the front of the pool, used when a
// ready check expires and the confirmed players deserve their spot
// back.
func (m *Manager) Requeue(players []domain.Player) {
	if len(players) == 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.waiting = append(append([]domain.Player(nil), players...), m.waiting...)
	m.logger.Info().Int("returned", len(players)).Int("queue_size", len(m.waiting)).Msg("players returned to queue")
	m.startIfFullLocked()
}

// Snapshot returns the ordered waiting pool.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Snapshot{
		Players:  append([]domain.Player(nil), m.waiting...),
		Size:     len(m.waiting),
		Capacity: constants.MatchSize,
	}
}

// FillWithBots tops the queue up to a full match with synthesized bot
// records. Operator affordance for testing the lifecycle without ten
// humans.
func (m *Manager) FillWithBots(ctx context.Context) error {
	m.mu.Lock()
	needed := constants.MatchSize - len(m.waiting)
	m.mu.Unlock()

	for i := 0; i < needed; i++ {
		bot := m.generateBot(fmt.Sprintf("%d-%d", time.Now().UnixNano(), i))
		if err := m.players.Upsert(ctx, &bot); err != nil {
			return fmt.Errorf("failed to persist bot %s: %w", bot.ID, err)
		}
		if err := m.Join(bot); err != nil {
			return err
		}
	}

	m.logger.Info().Int("bots", needed).Msg("queue filled with bots")
	return nil
}

func (m *Manager) startIfFullLocked() {
	if len(m.waiting) < constants.MatchSize {
		return
	}

	ten := append([]domain.Player(nil), m.waiting[:constants.MatchSize]...)
	if err := m.lifecycle.StartReadyCheck(ten); err != nil {
		// pool stays intact; the next join retries once the active
		// match clears
		m.logger.Warn().Err(err).Msg("queue full but match could not start")
		return
	}

	m.waiting = append([]domain.Player(nil), m.waiting[constants.MatchSize:]...)
}

func (m *Manager) generateBot(suffix string) domain.Player {
	name := constants.BotNames[m.rng.Intn(len(constants.BotNames))]
	roles := []domain.Role{domain.RoleDuelist, domain.RoleInitiator, domain.RoleController, domain.RoleSentinel}

	agents := []string{"Jett", "Reyna", "Raze", "Omen", "Sova", "Killjoy", "Sage", "Fade"}
	m.rng.Shuffle(len(agents), func(i, j int) { agents[i], agents[j] = agents[j], agents[i] })

	// usernames are unique-indexed and bot rows outlive the fill, so
	// the tag carries the id suffix instead of a random number
	return domain.Player{
		ID:            "bot-" + suffix,
		Username:      fmt.Sprintf("%s#BOT-%s", name, suffix),
		Rating:        constants.InitialRating + m.rng.Intn(400) - 200,
		Level:         1,
		Reputation:    m.rng.Intn(50),
		Wins:          m.rng.Intn(20),
		Losses:        m.rng.Intn(20),
		Winstreak:     m.rng.Intn(3),
		PrimaryRole:   roles[m.rng.Intn(len(roles))],
		SecondaryRole: domain.RoleFlex,
		TopAgents:     agents[:3],
		IsBot:         true,
	}
}
