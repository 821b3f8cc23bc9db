package config

// ExampleConfig returns a commented starter configuration; init writes it
// when no config file exists yet.
func ExampleConfig() string {
	return `# plannersync configuration file
# Values can be overridden by PLANNERSYNC_* environment variables or CLI flags.

# Obsidian vault that receives task notes (supports ~ expansion)
vault_path = "~/Planner"

# Workspace state file and its format (json or yaml)
data_file = "~/.plannersync/state.json"
data_format = "json"

# Status model. done_status marks a task completed; default_status is
# assigned to new tasks.
done_status = "Completed"
default_status = "Not Started"
default_priority = "Medium"
statuses = ["Not Started", "In Progress", "Blocked", "Completed"]

# Logging: level debug|info|warn|error, format text|json|logfmt
log_level = "info"
log_format = "text"

[sync]
# Echo suppression window after a push or pull, per task
suppression_window_ms = 2000
# Settle delay before a freshly created note is read
create_delay_ms = 500
# Minimum gap between full folder scans per project
scan_cooldown_minutes = 5
# Pause between files during a folder scan
file_pause_ms = 50

# Store the workspace in Redis instead of the data file, for sharing one
# planner across machines.
[redis]
enabled = false
addr = "localhost:6379"
password = ""
db = 0
namespace = "default"
`
}
