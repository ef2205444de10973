package draft

import (
	"context"
	"math/rand"
	"slices"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/fwdcp/pugchamp/pkg/types"
)

// StatusSink receives the rebuilt draft status after every externally
// observable state change.
type StatusSink interface {
	PublishStatus(status types.DraftStatus)
}

type Msg interface{ isDraftMsg() }

type Launch struct {
	Players  map[string][]PlayerID
	Captains []PlayerID
	Reply    chan error
}

func (Launch) isDraftMsg() {}

type MakeChoice struct {
	Choice Choice
}

func (MakeChoice) isDraftMsg() {}

type Abort struct {
	Reason string
	Reply  chan error
}

func (Abort) isDraftMsg() {}

type GetStatus struct {
	Reply chan types.DraftStatus
}

func (GetStatus) isDraftMsg() {}

type Shutdown struct{}

func (Shutdown) isDraftMsg() {}

// internal: turn deadline elapsed. gen guards against timers that fired
// just as a transition superseded them.
type turnExpired struct {
	gen int
}

func (turnExpired) isDraftMsg() {}

// internal: an automated choice finished computing off-loop.
type autoResult struct {
	gen    int
	choice Choice
	err    error
}

func (autoResult) isDraftMsg() {}

// Deps bundles the external collaborators the draft consumes.
type Deps struct {
	Log          *zap.Logger
	Rand         *rand.Rand
	Users        Directory
	Games        GameStore
	Allocator    Allocator
	Notifier     Notifier
	Restrictions RestrictionEngine
	Sink         StatusSink
}

// Service owns the single process-wide draft session. All mutation flows
// through one goroutine reading the inbox, so every read-validate-write
// sequence is atomic with respect to choices, timers, and aborts.
type Service struct {
	inbox chan Msg
	cfg   *Config

	log          *zap.Logger
	rng          *rand.Rand
	users        Directory
	games        GameStore
	allocator    Allocator
	notifier     Notifier
	restrictions RestrictionEngine
	sink         StatusSink

	s     session
	gen   int
	timer *time.Timer

	ctx    context.Context
	cancel context.CancelFunc
}

func NewService(parent context.Context, cfg *Config, deps Deps) *Service {
	ctx, cancel := context.WithCancel(parent)

	s := &Service{
		inbox:        make(chan Msg, 64),
		cfg:          cfg,
		log:          deps.Log,
		rng:          deps.Rand,
		users:        deps.Users,
		games:        deps.Games,
		allocator:    deps.Allocator,
		notifier:     deps.Notifier,
		restrictions: deps.Restrictions,
		sink:         deps.Sink,
		ctx:          ctx,
		cancel:       cancel,
	}

	go s.loop()
	return s
}

func (s *Service) Inbox() chan<- Msg { return s.inbox }

// Launch starts a new draft from the supplied per-role pools. Fails when a
// draft is already active or the initial state is illegal.
func (s *Service) Launch(ctx context.Context, players map[string][]PlayerID, captains []PlayerID) error {
	reply := make(chan error, 1)
	select {
	case s.inbox <- Launch{Players: players, Captains: captains, Reply: reply}:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Commit submits a draft choice. Invalid or stale choices are dropped
// without a reply; clients resync from the next status broadcast.
func (s *Service) Commit(ctx context.Context, choice Choice) error {
	select {
	case s.inbox <- MakeChoice{Choice: choice}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AbortDraft ends an active draft through the cleanup path.
func (s *Service) AbortDraft(ctx context.Context, reason string) error {
	reply := make(chan error, 1)
	select {
	case s.inbox <- Abort{Reason: reason, Reply: reply}:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Service) Status(ctx context.Context) (types.DraftStatus, error) {
	reply := make(chan types.DraftStatus, 1)
	select {
	case s.inbox <- GetStatus{Reply: reply}:
	case <-ctx.Done():
		return types.DraftStatus{}, ctx.Err()
	}
	select {
	case status := <-reply:
		return status, nil
	case <-ctx.Done():
		return types.DraftStatus{}, ctx.Err()
	}
}

func (s *Service) loop() {
	for {
		select {
		case <-s.ctx.Done():
			s.stopTimer()
			return

		case m := <-s.inbox:
			switch msg := m.(type) {
			case Launch:
				msg.Reply <- s.handleLaunch(msg)

			case MakeChoice:
				s.commitChoice(msg.Choice)

			case Abort:
				msg.Reply <- s.handleAbort(msg.Reason)

			case GetStatus:
				msg.Reply <- s.status()

			case turnExpired:
				s.handleExpire(msg.gen)

			case autoResult:
				s.handleAutoResult(msg)

			case Shutdown:
				s.stopTimer()
				s.cancel()
				return
			}
		}
	}
}

func (s *Service) handleLaunch(msg Launch) error {
	if s.s.active {
		return errors.New("draft already active")
	}

	pool := make(map[string][]PlayerID, len(s.cfg.Roles))
	var full []PlayerID
	for _, role := range s.cfg.Roles {
		pool[role.Name] = slices.Clone(msg.Players[role.Name])
		for _, player := range pool[role.Name] {
			if !containsPlayer(full, player) {
				full = append(full, player)
			}
		}
	}

	var captains []PlayerID
	if s.cfg.SeparateCaptainPool {
		captains = slices.Clone(msg.Captains)
	} else {
		aspects, err := s.restrictions.Restrictions(s.ctx, full)
		if err != nil {
			return errors.Wrap(err, "seeding captain pool")
		}
		for _, player := range full {
			if !containsString(aspects[player], "captain") {
				captains = append(captains, player)
			}
		}
	}

	s.s = session{
		active:         true,
		playerPool:     pool,
		captainPool:    captains,
		fullPlayerList: full,
		remainingMaps:  s.cfg.mapIDs(),
		teams: []Team{
			{RestrictedPicksRemaining: s.cfg.RestrictedPickLimit},
			{RestrictedPicksRemaining: s.cfg.RestrictedPickLimit},
		},
	}

	if !s.cfg.legalState(s.s.teams, mapState{picked: "", remaining: s.s.remainingMaps}, false) {
		s.s = session{}
		return errors.New("invalid state before draft start")
	}

	if err := s.restrictions.RefreshRestrictions(s.ctx, unionPlayers(captains, full)); err != nil {
		s.log.Warn("refreshing restrictions at draft start", zap.Error(err))
	}

	s.log.Info("draft launched",
		zap.Int("players", len(full)),
		zap.Int("captains", len(captains)))

	s.beginTurn(0)
	return nil
}

func (s *Service) handleAbort(reason string) error {
	if !s.s.active {
		return errors.New("no active draft")
	}
	if reason == "" {
		reason = "game draft aborted by administrator"
	}
	s.notifier.PostAction(s.ctx, "", reason)
	s.cleanup()
	return nil
}

func (s *Service) beginTurn(turn int) {
	s.s.currentTurn = turn
	s.s.recomputeUnavailable()

	def := s.cfg.TurnOrder[turn]

	switch def.Type {
	case TurnPlayerPick, TurnCaptainRolePick, TurnPlayerOrCaptainRolePick:
		team := s.s.teams[def.Team].Players
		s.s.allowedRoles = s.cfg.computeAllowedRoles(team)
		s.s.overrideRoles = s.cfg.computeOverrideRoles(team, s.s.playerPool, s.s.unavailablePlayers)
		s.s.restrictedPicks = s.cfg.computeRestrictedPicks(s.s.teams, s.s.playerPool, s.s.unavailablePlayers)
	default:
		s.s.allowedRoles = nil
		s.s.overrideRoles = nil
		s.s.restrictedPicks = nil
	}

	s.s.turnStartTime = time.Now()
	s.startTimer()
	s.publish()

	if def.Method == MethodCaptain {
		if s.s.teams[def.Team].Captain == "" {
			s.fatal("error beginning draft turn", errors.New("no captain to perform selection"))
		}
		return
	}

	s.spawnAuto(def)
}

// spawnAuto runs the automated choice off-loop against a copy of the
// session, so its statistics reads cannot race a concurrent commit. A
// result arriving after the session moved on is discarded by generation.
func (s *Service) spawnAuto(def TurnDefinition) {
	gen := s.gen
	view := autoView{
		turn:            def,
		teams:           s.s.cloneTeams(),
		playerPool:      clonePool(s.s.playerPool),
		captainPool:     slices.Clone(s.s.captainPool),
		fullPlayerList:  slices.Clone(s.s.fullPlayerList),
		unavailable:     slices.Clone(s.s.unavailablePlayers),
		allowedRoles:    slices.Clone(s.s.allowedRoles),
		overrideRoles:   slices.Clone(s.s.overrideRoles),
		restrictedPicks: slices.Clone(s.s.restrictedPicks),
		remainingMaps:   slices.Clone(s.s.remainingMaps),
	}

	// A superseded computation can still be running when the next turn
	// spawns its own. Each gets a private rng seeded on the loop, so two
	// services sharing a seed draw identical choices turn for turn.
	auto := &autoEngine{
		cfg:   s.cfg,
		rng:   rand.New(rand.NewSource(s.rng.Int63())),
		users: s.users,
		games: s.games,
	}

	go func() {
		choice, err := auto.choose(s.ctx, view)
		select {
		case s.inbox <- autoResult{gen: gen, choice: choice, err: err}:
		case <-s.ctx.Done():
		}
	}()
}

func (s *Service) handleAutoResult(msg autoResult) {
	if msg.gen != s.gen || !s.s.active || s.s.complete {
		return
	}
	if msg.err != nil {
		s.fatal("error in making automated choice", msg.err)
		return
	}
	s.commitChoice(msg.choice)
}

func (s *Service) commitChoice(choice Choice) {
	if !s.s.active || s.s.complete {
		return
	}

	def := s.cfg.TurnOrder[s.s.currentTurn]

	// Human turns must come from the acting captain; automated turns must
	// not carry a user at all.
	if def.Method == MethodCaptain {
		if choice.User == "" || choice.User != s.s.teams[def.Team].Captain {
			return
		}
	} else if choice.User != "" {
		return
	}

	if def.Type != choice.Type {
		return
	}

	newTeams := s.s.cloneTeams()
	newPicked := s.s.pickedMap
	newRemaining := slices.Clone(s.s.remainingMaps)

	switch def.Type {
	case TurnFactionSelect:
		if choice.Faction != FactionRED && choice.Faction != FactionBLU {
			return
		}
		ally, enemy := def.Team, 1-def.Team
		newTeams[ally].Faction = choice.Faction
		if choice.Faction == FactionRED {
			newTeams[enemy].Faction = FactionBLU
		} else {
			newTeams[enemy].Faction = FactionRED
		}

	case TurnCaptainSelect:
		if choice.Captain == "" {
			return
		}
		if s.s.isUnavailable(choice.Captain) && !teamHasPlayer(s.s.teams[def.Team], choice.Captain) {
			return
		}
		newTeams[def.Team].Captain = choice.Captain

	case TurnPlayerPick:
		if !s.validateRolePick(&newTeams[def.Team], def.Team, choice.Player, choice.Role, choice.Override) {
			return
		}
		newTeams[def.Team].Players = append(newTeams[def.Team].Players, PlayerSlot{User: choice.Player, Role: choice.Role})

	case TurnCaptainRolePick:
		if !containsString(s.s.allowedRoles, choice.Role) {
			return
		}
		if s.s.teams[def.Team].Captain == "" {
			return
		}
		newTeams[def.Team].Players = append(newTeams[def.Team].Players, PlayerSlot{User: s.s.teams[def.Team].Captain, Role: choice.Role})

	case TurnPlayerOrCaptainRolePick:
		captain := s.s.teams[def.Team].Captain
		if choice.Player != "" && choice.Player == captain {
			// The captain seats themselves; only role legality applies.
			if !containsString(s.s.allowedRoles, choice.Role) {
				return
			}
		} else {
			if !s.validateRolePick(&newTeams[def.Team], def.Team, choice.Player, choice.Role, choice.Override) {
				return
			}
		}
		newTeams[def.Team].Players = append(newTeams[def.Team].Players, PlayerSlot{User: choice.Player, Role: choice.Role})

	case TurnMapBan:
		if !containsString(s.s.remainingMaps, choice.Map) {
			return
		}
		newRemaining = withoutString(newRemaining, choice.Map)

	case TurnMapPick:
		if !containsString(s.s.remainingMaps, choice.Map) {
			return
		}
		newPicked = choice.Map
		newRemaining = withoutString(newRemaining, choice.Map)

	default:
		return
	}

	if !s.cfg.legalState(newTeams, mapState{picked: newPicked, remaining: newRemaining}, false) {
		s.fatal("error in committing draft choice", errors.Newf("invalid state after committing %s choice", choice.Type))
		return
	}

	s.s.teams = newTeams
	s.s.pickedMap = newPicked
	s.s.remainingMaps = newRemaining
	s.s.draftChoices = append(s.s.draftChoices, choice)

	s.stopTimer()

	if s.s.currentTurn+1 == len(s.cfg.TurnOrder) {
		s.completeDraft()
	} else {
		s.beginTurn(s.s.currentTurn + 1)
	}
}

// validateRolePick applies the pool, override, and restricted-pick rules
// for seating player into role on the acting team. Honoring a restricted
// pick outside the player's locked role consumes one of the team's
// restricted-pick allowances on the candidate team.
func (s *Service) validateRolePick(newTeam *Team, teamIndex int, player PlayerID, role string, override bool) bool {
	if player == "" {
		return false
	}
	if s.s.isUnavailable(player) {
		return false
	}
	if !containsString(s.s.allowedRoles, role) {
		return false
	}

	if restrictedFor(s.s.restrictedPicks, player) && !restrictionAllows(s.s.restrictedPicks, player, role, teamIndex) {
		if s.s.teams[teamIndex].RestrictedPicksRemaining > 0 && restrictedToTeam(s.s.restrictedPicks, player, teamIndex) {
			newTeam.RestrictedPicksRemaining--
		} else {
			return false
		}
	}

	if override {
		if !containsString(s.s.overrideRoles, role) {
			return false
		}
	} else {
		if !containsPlayer(s.s.playerPool[role], player) {
			return false
		}
	}

	return true
}

func (s *Service) handleExpire(gen int) {
	if gen != s.gen || !s.s.active || s.s.complete {
		return
	}

	def := s.cfg.TurnOrder[s.s.currentTurn]

	if def.Method == MethodCaptain && s.s.teams[def.Team].Captain != "" {
		captain := s.s.teams[def.Team].Captain

		alias := string(captain)
		if profile, err := s.users.User(s.ctx, captain); err == nil && profile.Alias != "" {
			alias = profile.Alias
		}
		s.log.Info("draft turn expired",
			zap.String("captain", string(captain)),
			zap.String("alias", alias),
			zap.Int("turn", s.s.currentTurn))

		err := s.games.CreatePenalty(s.ctx, PenaltyRecord{
			User:   captain,
			Type:   "captain",
			Reason: "aborting draft",
			Date:   time.Now(),
			Active: true,
		})
		if err != nil {
			s.log.Error("recording captain penalty", zap.Error(err))
		}

		if err := s.restrictions.RefreshRestrictions(s.ctx, []PlayerID{captain}); err != nil {
			s.log.Warn("refreshing captain restrictions", zap.Error(err))
		}

		s.notifier.PostAction(s.ctx, captain, "aborted draft by turn expiration")
	} else {
		s.notifier.PostAction(s.ctx, "", "game draft aborted due to turn expiration")
	}

	s.cleanup()
}

func (s *Service) completeDraft() {
	s.s.complete = true

	if !s.cfg.legalState(s.s.teams, mapState{picked: s.s.pickedMap, remaining: s.s.remainingMaps}, true) {
		s.fatal("error completing draft", errors.New("invalid state after draft completed"))
		return
	}

	s.s.currentTurn = len(s.cfg.TurnOrder)
	s.s.allowedRoles = nil
	s.s.overrideRoles = nil
	s.s.restrictedPicks = nil
	s.s.recomputeUnavailable()
	s.s.turnStartTime = time.Now()

	s.publish()

	s.launchGame()
}

// launchGame hands the completed draft to persistence and server
// allocation. Any failure tears the draft down; it never stays complete
// without a corresponding match.
func (s *Service) launchGame() {
	rec := GameRecord{
		Map:          s.s.pickedMap,
		PoolMaps:     s.cfg.mapIDs(),
		PoolPlayers:  invertPool(s.s.playerPool),
		PoolCaptains: slices.Clone(s.s.captainPool),
	}
	for _, team := range s.s.teams {
		rec.Teams = append(rec.Teams, GameTeamRecord{
			Captain: team.Captain,
			Faction: team.Faction,
			Players: slices.Clone(team.Players),
		})
	}
	for i, choice := range s.s.draftChoices {
		rec.Choices = append(rec.Choices, newChoiceRecord(s.cfg.TurnOrder[i], choice))
	}

	involved := unionPlayers(s.s.captainPool, s.s.fullPlayerList)

	gameID, err := s.games.CreateGame(s.ctx, rec)
	if err != nil {
		s.notifier.PostError(s.ctx, "encountered error while trying to set up drafted game", err)
		s.notifier.PostAction(s.ctx, "", "failed to set up drafted game due to internal error")
		s.cleanup()
		return
	}

	s.s.currentGame = gameID

	if err := s.restrictions.RefreshRestrictions(s.ctx, involved); err != nil {
		s.log.Warn("refreshing restrictions after game creation", zap.Error(err))
	}

	s.publish()

	if err := s.allocator.AssignServer(s.ctx, gameID); err != nil {
		s.notifier.PostError(s.ctx, "encountered error while trying to set up game "+gameID, err)
		s.notifier.PostAction(s.ctx, "", "failed to set up drafted game due to internal error")
		s.cleanup()
		return
	}

	s.log.Info("drafted game launched", zap.String("game", gameID), zap.String("map", s.s.pickedMap))
}

// fatal handles an invariant violation: log it, tell everyone the draft
// died, reset to idle.
func (s *Service) fatal(description string, err error) {
	s.log.Error(description, zap.Error(err), zap.Int("turn", s.s.currentTurn))
	s.notifier.PostError(s.ctx, description, err)
	s.notifier.PostAction(s.ctx, "", "game draft aborted due to internal error")
	s.cleanup()
}

// cleanup unconditionally resets the session to idle, cancels any pending
// timer, and lets observers and the restriction engine know the draft
// ended.
func (s *Service) cleanup() {
	previous := unionPlayers(s.s.captainPool, s.s.fullPlayerList)

	s.stopTimer()
	s.gen++
	s.s = session{}

	s.publish()

	if len(previous) > 0 {
		if err := s.restrictions.RefreshRestrictions(s.ctx, previous); err != nil {
			s.log.Warn("refreshing restrictions after draft end", zap.Error(err))
		}
	}
}

func (s *Service) startTimer() {
	s.stopTimer()
	s.gen++
	gen := s.gen

	s.timer = time.AfterFunc(s.cfg.TurnTimeLimit, func() {
		select {
		case s.inbox <- turnExpired{gen: gen}:
		case <-s.ctx.Done():
		}
	})
}

func (s *Service) stopTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Service) publish() {
	if s.sink != nil {
		s.sink.PublishStatus(s.status())
	}
}

func teamHasPlayer(team Team, player PlayerID) bool {
	for _, slot := range team.Players {
		if slot.User == player {
			return true
		}
	}
	return false
}

func unionPlayers(a, b []PlayerID) []PlayerID {
	out := slices.Clone(a)
	for _, p := range b {
		if !containsPlayer(out, p) {
			out = append(out, p)
		}
	}
	return out
}

func clonePool(pool map[string][]PlayerID) map[string][]PlayerID {
	out := make(map[string][]PlayerID, len(pool))
	for role, players := range pool {
		out[role] = slices.Clone(players)
	}
	return out
}

// invertPool flips role->players into player->roles for the audit record.
func invertPool(pool map[string][]PlayerID) map[PlayerID][]string {
	out := make(map[PlayerID][]string)
	for role, players := range pool {
		for _, player := range players {
			out[player] = append(out[player], role)
		}
	}
	return out
}
