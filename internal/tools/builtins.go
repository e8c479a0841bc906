package tools

// BuiltinConfig configures the built-in tool catalog registered by
// NewBuiltinRegistry.
type BuiltinConfig struct {
	Workspace      string
	MaxReadBytes   int
	MaxSearchHits  int
	MaxFetchChars  int
	ShellMaxOutput int
	Snapshots      SnapshotStore
}

// NewBuiltinRegistry returns a Registry populated with the eleven built-in
// tools (Read, Write, Search, Remove, Patch, Undo, Shell, Fetch, Followup,
// AttemptCompletion, Plan), each scoped to cfg.Workspace.
func NewBuiltinRegistry(cfg BuiltinConfig) *Registry {
	r := NewRegistry()
	r.Register(NewReadTool(cfg.Workspace, cfg.MaxReadBytes))
	r.Register(NewWriteTool(cfg.Workspace))
	r.Register(NewSearchTool(cfg.Workspace, cfg.MaxSearchHits))
	r.Register(NewRemoveTool(cfg.Workspace))
	r.Register(NewPatchTool(cfg.Workspace))
	r.Register(NewUndoTool(cfg.Workspace, cfg.Snapshots))
	r.Register(NewShellTool(cfg.Workspace, cfg.ShellMaxOutput))
	r.Register(NewFetchTool(cfg.MaxFetchChars))
	r.Register(NewFollowupTool())
	r.Register(NewAttemptCompletionTool())
	r.Register(NewPlanTool())
	return r
}
