package match

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"

	"valorant-hub/internal/constants"
	"valorant-hub/internal/domain"
)

var (
	ErrMatchInProgress  = errors.New("a match is already in progress")
	ErrNoActiveMatch    = errors.New("no active match")
	ErrWrongPhase       = errors.New("operation not valid in current phase")
	ErrNotParticipant   = errors.New("not a participant of this match")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrPlayerNotInPool  = errors.New("player is not in the draft pool")
	ErrMapNotInPool     = errors.New("map is not in the remaining pool")
	ErrReportsDisagree  = errors.New("scores do not match the opposing report")
	ErrAlreadyConfirmed = errors.New("ready check already confirmed")
)

// Actor is the explicit session identity every operation runs under.
// Admin is a role claim on the identity, never inferred from a name.
type Actor struct {
	ID       string
	Username string
	Admin    bool
}

// Lifecycle owns the single active match instance and drives it through
// READY_CHECK, DRAFT, VETO, LIVE and FINISHED. All mutation goes
// through its mutex; the periodic tick drives deadlines and automated
// captains, and is torn down the moment the phases that need it are
// left behind.
type Lifecycle struct {
	mu           sync.Mutex
	current      *Instance
	allReadyAt   time.Time
	tickStop     chan struct{}
	onAbort      func(returned []domain.Player)
	settler      *Settler
	logger       zerolog.Logger
	readyTimeout time.Duration

	now        func() time.Time
	rng        *rand.Rand
	manualTick bool
}

func NewLifecycle(settler *Settler, logger zerolog.Logger) *Lifecycle {
	return &Lifecycle{
		settler:      settler,
		logger:       logger,
		readyTimeout: constants.ReadyCheckTimeout,
		now:          time.Now,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetOnAbort registers the callback receiving confirmed players when a
// ready check expires. Wired to the queue at startup.
func (l *Lifecycle) SetOnAbort(fn func(returned []domain.Player)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onAbort = fn
}

// Snapshot returns a copy of the active match, or nil when idle.
func (l *Lifecycle) Snapshot() *Instance {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current.clone()
}

// StartReadyCheck creates a match from exactly MatchSize queued players
// and enters READY_CHECK. Bot participants confirm immediately.
func (l *Lifecycle) StartReadyCheck(players []domain.Player) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.current != nil {
		return ErrMatchInProgress
	}
	if len(players) != constants.MatchSize {
		return fmt.Errorf("ready check needs exactly %d players, got %d", constants.MatchSize, len(players))
	}

	id, err := gonanoid.New()
	if err != nil {
		return fmt.Errorf("failed to generate match id: %w", err)
	}

	inst := &Instance{
		ID:       "match-" + id,
		Phase:    domain.PhaseReadyCheck,
		Players:  append([]domain.Player(nil), players...),
		Turn:     domain.SideA,
		Deadline: l.now().Add(l.readyTimeout),
	}
	for _, p := range inst.Players {
		if p.IsBot {
			inst.Ready = append(inst.Ready, p.ID)
		}
	}

	l.current = inst
	l.allReadyAt = time.Time{}
	l.startTicker()

	l.logger.Info().
		Str("match_id", inst.ID).
		Int("players", len(players)).
		Time("deadline", inst.Deadline).
		Msg("ready check started")
	return nil
}

// Accept records a participant's ready confirmation.
func (l *Lifecycle) Accept(actor Actor) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	inst := l.current
	if inst == nil {
		return ErrNoActiveMatch
	}
	if inst.Phase != domain.PhaseReadyCheck {
		return ErrWrongPhase
	}
	if inst.participant(actor.ID) == nil {
		return ErrNotParticipant
	}
	if inst.isReady(actor.ID) {
		return ErrAlreadyConfirmed
	}

	inst.Ready = append(inst.Ready, actor.ID)
	l.logger.Debug().Str("match_id", inst.ID).Str("player_id", actor.ID).Int("ready", len(inst.Ready)).Msg("ready confirmed")
	return nil
}

// DraftPlayer adds a pool player to the side on turn. Only that side's
// captain (or an admin) may pick.
func (l *Lifecycle) DraftPlayer(actor Actor, playerID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	inst := l.current
	if inst == nil {
		return ErrNoActiveMatch
	}
	if inst.Phase != domain.PhaseDraft {
		return ErrWrongPhase
	}
	captain := inst.captainOnTurn()
	if !actor.Admin && (captain == nil || captain.ID != actor.ID) {
		return ErrNotYourTurn
	}
	return l.draftLocked(playerID)
}

func (l *Lifecycle) draftLocked(playerID string) error {
	inst := l.current

	idx := -1
	for i, p := range inst.Pool {
		if p.ID == playerID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrPlayerNotInPool
	}

	picked := inst.Pool[idx]
	inst.Pool = append(inst.Pool[:idx], inst.Pool[idx+1:]...)

	captain := inst.captainOnTurn()
	if inst.Turn == domain.SideA {
		inst.TeamA = append(inst.TeamA, picked)
	} else {
		inst.TeamB = append(inst.TeamB, picked)
	}
	l.systemMessage(inst, fmt.Sprintf("%s drafted to Team %s", picked.Username, captain.Username))
	inst.Turn = inst.Turn.Other()

	l.logger.Info().
		Str("match_id", inst.ID).
		Str("player", picked.Username).
		Str("captain", captain.Username).
		Int("pool_left", len(inst.Pool)).
		Msg("player drafted")

	if len(inst.Pool) == 0 {
		l.enterVetoLocked()
	}
	return nil
}

func (l *Lifecycle) enterVetoLocked() {
	inst := l.current
	inst.Phase = domain.PhaseVeto
	inst.Turn = domain.SideA
	inst.Maps = append([]string(nil), constants.MapPool...)
	l.systemMessage(inst, "Draft complete. Captains, ban maps until one remains.")
	l.logger.Info().Str("match_id", inst.ID).Int("maps", len(inst.Maps)).Msg("veto started")
}

// VetoMap removes a map from contention for the side on turn. When one
// map remains it becomes the selected map and the match goes live.
func (l *Lifecycle) VetoMap(actor Actor, mapName string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	inst := l.current
	if inst == nil {
		return ErrNoActiveMatch
	}
	if inst.Phase != domain.PhaseVeto {
		return ErrWrongPhase
	}
	captain := inst.captainOnTurn()
	if !actor.Admin && (captain == nil || captain.ID != actor.ID) {
		return ErrNotYourTurn
	}
	return l.vetoLocked(mapName)
}

func (l *Lifecycle) vetoLocked(mapName string) error {
	inst := l.current

	idx := -1
	for i, m := range inst.Maps {
		if strings.EqualFold(m, mapName) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrMapNotInPool
	}

	banned := inst.Maps[idx]
	inst.Maps = append(inst.Maps[:idx], inst.Maps[idx+1:]...)
	l.systemMessage(inst, fmt.Sprintf("Map %s banned.", banned))

	if len(inst.Maps) == 1 {
		inst.Selected = inst.Maps[0]
		inst.Phase = domain.PhaseLive
		inst.StartAt = l.now()
		l.systemMessage(inst, fmt.Sprintf("Match Live on %s! Good luck.", inst.Selected))
		l.logger.Info().Str("match_id", inst.ID).Str("map", inst.Selected).Msg("match live")
		l.stopTicker()
		return nil
	}

	inst.Turn = inst.Turn.Other()
	return nil
}

// SendChat appends a participant message to the match transcript.
func (l *Lifecycle) SendChat(actor Actor, text string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	inst := l.current
	if inst == nil {
		return ErrNoActiveMatch
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if inst.participant(actor.ID) == nil && !actor.Admin {
		return ErrNotParticipant
	}

	id, err := gonanoid.New()
	if err != nil {
		return fmt.Errorf("failed to generate message id: %w", err)
	}
	inst.Chat = append(inst.Chat, domain.ChatMessage{
		ID:         "msg-" + id,
		SenderID:   actor.ID,
		SenderName: actor.Username,
		Text:       text,
		Timestamp:  l.now(),
	})
	return nil
}

// ForceTimePass rewinds the live start time to simulate elapsed play.
// Diagnostic affordance only.
func (l *Lifecycle) ForceTimePass() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	inst := l.current
	if inst == nil {
		return ErrNoActiveMatch
	}
	if inst.Phase != domain.PhaseLive {
		return ErrWrongPhase
	}
	inst.StartAt = l.now().Add(-21 * time.Minute)
	return nil
}

// Reset clears a finished match back to idle. Admins may also abandon a
// match in any phase.
func (l *Lifecycle) Reset(actor Actor) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	inst := l.current
	if inst == nil {
		return ErrNoActiveMatch
	}
	if inst.Phase != domain.PhaseFinished && !actor.Admin {
		return ErrWrongPhase
	}

	l.stopTicker()
	l.current = nil
	l.logger.Info().Str("match_id", inst.ID).Str("phase", string(inst.Phase)).Msg("match reset")
	return nil
}

func (l *Lifecycle) systemMessage(inst *Instance, text string) {
	id, err := gonanoid.New()
	if err != nil {
		id = fmt.Sprintf("%d", l.now().UnixNano())
	}
	inst.Chat = append(inst.Chat, domain.ChatMessage{
		ID:         "sys-" + id,
		SenderID:   "system",
		SenderName: "System",
		Text:       text,
		Timestamp:  l.now(),
		IsSystem:   true,
	})
}

// initializeDraft sorts the snapshot by rating descending; the two
// strongest become captains and side B, captained by the second seed,
// picks first.
func (l *Lifecycle) initializeDraftLocked() {
	inst := l.current

	sorted := append([]domain.Player(nil), inst.Players...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Rating > sorted[j].Rating })

	capA := sorted[0]
	capB := sorted[1]
	inst.CaptainA = &capA
	inst.CaptainB = &capB
	inst.TeamA = []domain.Player{capA}
	inst.TeamB = []domain.Player{capB}
	inst.Pool = append([]domain.Player(nil), sorted[2:]...)
	inst.Turn = domain.SideB
	inst.Phase = domain.PhaseDraft
	inst.Ready = nil
	l.systemMessage(inst, "Draft started. Captains, pick your teams.")

	l.logger.Info().
		Str("match_id", inst.ID).
		Str("captain_a", capA.Username).
		Str("captain_b", capB.Username).
		Msg("draft started")
}

// --- periodic tick ---

func (l *Lifecycle) startTicker() {
	if l.manualTick {
		return
	}
	stop := make(chan struct{})
	l.tickStop = stop
	go func() {
		ticker := time.NewTicker(constants.ReadyCheckTick)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				l.tick()
			}
		}
	}()
}

// stopTicker must be called with the mutex held.
func (l *Lifecycle) stopTicker() {
	if l.tickStop != nil {
		close(l.tickStop)
		l.tickStop = nil
	}
}

// tick advances time-driven behaviour: the ready-check deadline, the
// grace delay into the draft, and automated captains. The phase is
// re-checked under the lock so a stale timer firing after a transition
// is a silent no-op. The abort callback runs after the lock is
// released; it may immediately start the next ready check.
func (l *Lifecycle) tick() {
	l.mu.Lock()

	var abort func()
	inst := l.current
	if inst == nil {
		l.stopTicker()
	} else {
		switch inst.Phase {
		case domain.PhaseReadyCheck:
			abort = l.tickReadyCheckLocked()
		case domain.PhaseDraft:
			l.tickDraftLocked()
		case domain.PhaseVeto:
			l.tickVetoLocked()
		default:
			l.stopTicker()
		}
	}

	l.mu.Unlock()
	if abort != nil {
		abort()
	}
}

func (l *Lifecycle) tickReadyCheckLocked() func() {
	inst := l.current
	now := l.now()

	// bots confirm on entry; re-assert in case one was added late
	for _, p := range inst.Players {
		if p.IsBot && !inst.isReady(p.ID) {
			inst.Ready = append(inst.Ready, p.ID)
		}
	}

	if inst.allReady() {
		if l.allReadyAt.IsZero() {
			l.allReadyAt = now
			return nil
		}
		if now.Sub(l.allReadyAt) >= constants.DraftGraceDelay {
			l.initializeDraftLocked()
		}
		return nil
	}

	if !now.After(inst.Deadline) {
		return nil
	}

	var confirmed []domain.Player
	var dropped []string
	for _, p := range inst.Players {
		if inst.isReady(p.ID) {
			confirmed = append(confirmed, p)
		} else {
			dropped = append(dropped, p.Username)
		}
	}

	l.logger.Warn().
		Str("match_id", inst.ID).
		Int("confirmed", len(confirmed)).
		Strs("dropped", dropped).
		Msg("ready check expired, match aborted")

	l.stopTicker()
	l.current = nil
	if l.onAbort == nil {
		return nil
	}
	callback := l.onAbort
	return func() { callback(confirmed) }
}

func (l *Lifecycle) tickDraftLocked() {
	inst := l.current
	// the pool can hit zero exactly on the final pick; guard here too
	if len(inst.Pool) == 0 {
		l.enterVetoLocked()
		return
	}
	captain := inst.captainOnTurn()
	if captain == nil || !captain.IsBot {
		return
	}
	pick := inst.Pool[l.rng.Intn(len(inst.Pool))]
	if err := l.draftLocked(pick.ID); err != nil {
		l.logger.Error().Err(err).Str("match_id", inst.ID).Msg("bot draft failed")
	}
}

func (l *Lifecycle) tickVetoLocked() {
	inst := l.current
	captain := inst.captainOnTurn()
	if captain == nil || !captain.IsBot {
		return
	}
	ban := inst.Maps[l.rng.Intn(len(inst.Maps))]
	if err := l.vetoLocked(ban); err != nil {
		l.logger.Error().Err(err).Str("match_id", inst.ID).Msg("bot veto failed")
	}
}
