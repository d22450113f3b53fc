// Command jobhost runs jobs and services that stop gracefully when the
// platform asks them to.
//
// A shutdown request is any of: the shutdown file named by
// WEBJOBS_SHUTDOWN_FILE appearing, SIGTERM, or Ctrl+C. Running work gets
// up to four seconds to return before the process goes on terminating.
//
// Usage:
//
//	jobhost run -- ./backup.sh --target /data
//	jobhost serve --addr :8080
//	jobhost config -o json
//	jobhost version
package main
