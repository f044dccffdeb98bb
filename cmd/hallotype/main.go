// Package main provides the CLI entrypoint for hallotype.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/hello97-gg/hallotype/internal/achieve"
	"github.com/hello97-gg/hallotype/internal/config"
	"github.com/hello97-gg/hallotype/internal/model"
	"github.com/hello97-gg/hallotype/internal/race"
	"github.com/hello97-gg/hallotype/internal/remote"
	"github.com/hello97-gg/hallotype/internal/server"
	"github.com/hello97-gg/hallotype/internal/sound"
	"github.com/hello97-gg/hallotype/internal/statsui"
	"github.com/hello97-gg/hallotype/internal/store"
	"github.com/hello97-gg/hallotype/internal/tui"
	"github.com/hello97-gg/hallotype/internal/words"
)

const (
	defaultServer = "ws://localhost:8080"
	defaultAddr   = ":8080"
	defaultTopN   = 10
)

var (
	playTime      int
	playTier      string
	playWordsFile string
	playMute      bool

	raceServer string
	raceName   string
	raceTime   int
	raceTier   string
	raceMute   bool

	serveAddr string

	topTime     int
	topMongoURI string

	syncUser     string
	syncName     string
	syncMongoURI string

	badgeID string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "hallotype",
		Short:         "Timed typing game with multiplayer races",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPlayCmd,
	}

	rootCmd.Flags().IntVar(&playTime, "time", model.DefaultTimeLimit, "session length in seconds (15, 30, 60, 120)")
	rootCmd.Flags().StringVar(&playTier, "tier", string(model.DefaultTier), "word tier (easy, medium, hard)")
	rootCmd.Flags().StringVar(&playWordsFile, "words-file", "", "custom word list file (one word per line)")
	rootCmd.Flags().BoolVar(&playMute, "mute", false, "disable sounds")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newRaceCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newTopCmd())
	rootCmd.AddCommand(newSyncCmd())
	rootCmd.AddCommand(newBadgeCmd())

	return rootCmd
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	prefs, err := st.LoadPrefs(context.Background())
	if err != nil {
		logErrf("failed to load preferences: %v\n", err)
	}
	applyPrefDefaults(cmd, prefs)
	applyIntConfig(cmd, "time", &playTime, fileCfg.Game.Time)
	applyStringConfig(cmd, "tier", &playTier, fileCfg.Game.Tier)
	applyStringConfig(cmd, "words-file", &playWordsFile, fileCfg.Game.WordsFile)
	applyBoolConfig(cmd, "mute", &playMute, fileCfg.Sound.Mute)

	timeLimit, tier, err := validatePlayConfig()
	if err != nil {
		return err
	}

	var wordList []string
	if playWordsFile != "" {
		list, err := words.LoadFile(playWordsFile)
		if err != nil {
			return fmt.Errorf("failed to load word list: %w", err)
		}
		wordList = words.New().GenerateFrom(list, 120)
	}

	prefs.TimeLimit = timeLimit
	prefs.Tier = tier
	prefs.Muted = playMute
	if err := st.SavePrefs(context.Background(), prefs); err != nil {
		logErrf("failed to save preferences: %v\n", err)
	}

	sounds := newPlayer(playMute)
	defer closePlayer(sounds)

	m := tui.NewModel(tui.Options{
		TimeLimit: timeLimit,
		Tier:      tier,
		Words:     wordList,
		Sounds:    sounds,
	}, st)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// applyPrefDefaults seeds flag values from stored preferences before the
// config file and flags get their say.
func applyPrefDefaults(cmd *cobra.Command, prefs model.Prefs) {
	if !cmd.Flags().Changed("time") {
		playTime = prefs.TimeLimit
	}
	if !cmd.Flags().Changed("tier") {
		playTier = string(prefs.Tier)
	}
	if !cmd.Flags().Changed("mute") {
		playMute = prefs.Muted
	}
}

// applyRaceMute resolves the race session's mute setting with the same
// precedence solo play uses: stored preference, then config file, then flag.
func applyRaceMute(cmd *cobra.Command, prefs model.Prefs, cfg *bool) {
	if !cmd.Flags().Changed("mute") {
		raceMute = prefs.Muted
	}
	applyBoolConfig(cmd, "mute", &raceMute, cfg)
}

func validatePlayConfig() (int, model.Tier, error) {
	if !model.ValidTimeLimit(playTime) {
		return 0, "", fmt.Errorf("--time must be one of %v", model.TimeOptions)
	}
	tier := model.Tier(playTier)
	if !model.ValidTier(tier) {
		return 0, "", fmt.Errorf("--tier must be easy, medium, or hard")
	}
	return playTime, tier, nil
}

func newPlayer(mute bool) sound.Player {
	if mute {
		return sound.Null{}
	}
	return sound.NewSpeaker()
}

func closePlayer(p sound.Player) {
	if s, ok := p.(*sound.Speaker); ok {
		s.Close()
	}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
}

func runStatsCmd(_ *cobra.Command, _ []string) error {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	m := statsui.NewModel(st)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func newRaceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "race [room-code]",
		Short: "Host or join a multiplayer race",
		Long:  "Without a room code, creates a room and prints its shareable code. With one, joins that room.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runRaceCmd,
	}
	cmd.Flags().StringVar(&raceServer, "server", defaultServer, "race server address")
	cmd.Flags().StringVar(&raceName, "name", "", "display name (default: $USER)")
	cmd.Flags().IntVar(&raceTime, "time", model.DefaultTimeLimit, "race length in seconds (hosting only)")
	cmd.Flags().StringVar(&raceTier, "tier", string(model.DefaultTier), "word tier (hosting only)")
	cmd.Flags().BoolVar(&raceMute, "mute", false, "disable sounds")
	return cmd
}

func runRaceCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "server", &raceServer, fileCfg.Race.Server)
	applyStringConfig(cmd, "name", &raceName, fileCfg.Race.DisplayName)

	name := raceName
	if name == "" {
		name = os.Getenv("USER")
	}
	if name == "" {
		return fmt.Errorf("--name is required")
	}
	selfID := uuid.NewString()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := race.Dial(ctx, raceServer, selfID, name)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := client.Close(); cerr != nil {
			// Connection is often already gone after the race.
			_ = cerr
		}
	}()

	if len(args) == 1 {
		if err := client.JoinRoom(strings.ToUpper(args[0])); err != nil {
			return fmt.Errorf("failed to join room: %w", err)
		}
	} else {
		tier := model.Tier(raceTier)
		if !model.ValidTier(tier) {
			return fmt.Errorf("--tier must be easy, medium, or hard")
		}
		if !model.ValidTimeLimit(raceTime) {
			return fmt.Errorf("--time must be one of %v", model.TimeOptions)
		}
		if err := client.CreateRoom(raceTime, tier); err != nil {
			return fmt.Errorf("failed to create room: %w", err)
		}
	}

	room, err := awaitRoom(client)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		logErrf("Room code: %s (share it, then press s to start)\n", room.RoomID)
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	prefs, err := st.LoadPrefs(context.Background())
	if err != nil {
		logErrf("failed to load preferences: %v\n", err)
	}
	applyRaceMute(cmd, prefs, fileCfg.Sound.Mute)

	sounds := newPlayer(raceMute)
	defer closePlayer(sounds)

	m := tui.NewModel(tui.Options{
		TimeLimit:   room.TimeLimit,
		Tier:        room.Tier,
		Words:       room.Words,
		Sounds:      sounds,
		Race:        client,
		SelfID:      selfID,
		InitialRoom: room,
	}, st)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// awaitRoom blocks until the server acknowledges the create or join with a
// first room state.
func awaitRoom(client *race.Client) (*model.RoomState, error) {
	timeout := time.After(10 * time.Second)
	for {
		select {
		case env, ok := <-client.Events():
			if !ok {
				return nil, fmt.Errorf("race server closed the connection")
			}
			switch env.Type {
			case race.MsgError:
				return nil, fmt.Errorf("race server: %s", env.Error)
			case race.MsgRoomState:
				if env.Room != nil {
					return env.Room, nil
				}
			}
		case <-timeout:
			return nil, fmt.Errorf("timed out waiting for room state")
		}
	}
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a race server",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().StringVar(&serveAddr, "addr", defaultAddr, "listen address")
	return cmd
}

func runServeCmd(_ *cobra.Command, _ []string) error {
	return server.New().ListenAndServe(serveAddr)
}

func newTopCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "top",
		Short: "Show a leaderboard",
		Args:  cobra.NoArgs,
		RunE:  runTopCmd,
	}
	cmd.Flags().IntVar(&topTime, "time", model.DefaultTimeLimit, "leaderboard time limit")
	cmd.Flags().StringVar(&topMongoURI, "mongo-uri", os.Getenv("HALLOTYPE_MONGO_URI"), "MongoDB connection string")
	return cmd
}

func runTopCmd(cmd *cobra.Command, _ []string) error {
	if topMongoURI == "" {
		return fmt.Errorf("--mongo-uri (or HALLOTYPE_MONGO_URI) is required")
	}
	if !model.ValidTimeLimit(topTime) {
		return fmt.Errorf("--time must be one of %v", model.TimeOptions)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	rs, err := remote.Connect(ctx, topMongoURI)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rs.Close(context.Background()); cerr != nil {
			logErrf("failed to disconnect: %v\n", cerr)
		}
	}()

	entries, err := rs.TopScores(ctx, topTime, defaultTopN)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No scores yet for %ds.\n", topTime)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Top %ds typists\n", topTime)
	for i, e := range entries {
		badge := ""
		if a, ok := achieve.ByID(e.EquippedBadge); ok {
			badge = " [" + a.Name + "]"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%2d. %-20s %3d wpm%s\n", i+1, e.DisplayName, e.WPM, badge)
	}
	return nil
}

func newSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Sync local data to your account",
		Args:  cobra.NoArgs,
		RunE:  runSyncCmd,
	}
	cmd.Flags().StringVar(&syncUser, "user", "", "account id")
	cmd.Flags().StringVar(&syncName, "name", "", "display name")
	cmd.Flags().StringVar(&syncMongoURI, "mongo-uri", os.Getenv("HALLOTYPE_MONGO_URI"), "MongoDB connection string")
	return cmd
}

func runSyncCmd(cmd *cobra.Command, _ []string) error {
	if syncUser == "" || syncName == "" {
		return fmt.Errorf("--user and --name are required")
	}
	if syncMongoURI == "" {
		return fmt.Errorf("--mongo-uri (or HALLOTYPE_MONGO_URI) is required")
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	rs, err := remote.Connect(ctx, syncMongoURI)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rs.Close(context.Background()); cerr != nil {
			logErrf("failed to disconnect: %v\n", cerr)
		}
	}()

	doc, err := buildUserDoc(ctx, st, syncUser, syncName)
	if err != nil {
		return err
	}
	if err := rs.SeedUser(ctx, doc); err != nil {
		return err
	}

	// Push the best local score of each time option onto its ladder.
	for _, limit := range model.TimeOptions {
		best, err := st.BestWPMForTimeLimit(ctx, limit)
		if err != nil {
			return err
		}
		if best == 0 {
			continue
		}
		changed, err := rs.SubmitScore(ctx, model.LeaderboardEntry{
			UserID:        syncUser,
			DisplayName:   syncName,
			WPM:           best,
			TimeLimit:     limit,
			EquippedBadge: doc.EquippedBadge,
			UpdatedAt:     time.Now(),
		})
		if err != nil {
			return err
		}
		if changed {
			fmt.Fprintf(cmd.OutOrStdout(), "Submitted %d wpm to the %ds leaderboard\n", best, limit)
		}
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Sync complete")
	return nil
}

func buildUserDoc(ctx context.Context, st *store.Store, userID, name string) (remote.UserDoc, error) {
	history, err := st.ListHistory(ctx, 0)
	if err != nil {
		return remote.UserDoc{}, err
	}
	highScores, err := st.HighScores(ctx)
	if err != nil {
		return remote.UserDoc{}, err
	}
	totalTime, err := st.TotalTypingTime(ctx)
	if err != nil {
		return remote.UserDoc{}, err
	}
	unlocked, err := st.Achievements(ctx)
	if err != nil {
		return remote.UserDoc{}, err
	}
	equipped, err := st.EquippedBadge(ctx)
	if err != nil {
		return remote.UserDoc{}, err
	}
	prefs, err := st.LoadPrefs(ctx)
	if err != nil {
		return remote.UserDoc{}, err
	}

	achievements := make(map[string]int64, len(unlocked))
	for id, at := range unlocked {
		achievements[id] = at.UnixMilli()
	}
	return remote.UserDoc{
		UserID:          userID,
		DisplayName:     name,
		HighScores:      highScores,
		History:         history,
		TotalTypingTime: totalTime,
		Achievements:    achievements,
		EquippedBadge:   equipped,
		Prefs: remote.RemotePrefs{
			TimeLimit: prefs.TimeLimit,
			Tier:      prefs.Tier,
			KeySound:  prefs.KeySound,
			Muted:     prefs.Muted,
		},
	}, nil
}

func newBadgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "badge",
		Short: "Equip an unlocked achievement badge",
		Args:  cobra.NoArgs,
		RunE:  runBadgeCmd,
	}
	cmd.Flags().StringVar(&badgeID, "id", "", "achievement id to equip (empty to unequip)")
	return cmd
}

func runBadgeCmd(cmd *cobra.Command, _ []string) error {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx := context.Background()
	if badgeID == "" {
		if err := st.SetEquippedBadge(ctx, ""); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Badge unequipped")
		return nil
	}

	a, ok := achieve.ByID(badgeID)
	if !ok {
		return fmt.Errorf("unknown achievement %q", badgeID)
	}
	unlocked, err := st.Achievements(ctx)
	if err != nil {
		return err
	}
	if _, ok := unlocked[a.ID]; !ok {
		return fmt.Errorf("achievement %q is not unlocked yet", a.ID)
	}
	if err := st.SetEquippedBadge(ctx, a.ID); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Equipped %s\n", a.Name)
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# hallotype configuration
# Uncomment a value to enable it. CLI flags override config values.

[game]
# time = %d               # Session length in seconds (15, 30, 60, 120)
# tier = %q          # Word tier (easy, medium, hard)
# words-file = ""         # Custom word list (one word per line)

[race]
# server = %q
# display-name = ""

[sound]
# mute = false
# key-sound = "blip"
`,
		model.DefaultTimeLimit,
		string(model.DefaultTier),
		defaultServer,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
