// Package session keeps the in-memory table of running RichMan games.
//
// Manager hands out 4-character hexadecimal session IDs, looks sessions up
// case-insensitively and expires sessions nobody touched for a while. Each
// session owns its own engine; the manager builds it but never drives it.
// Sessions live only as long as the process.
//
// Usage:
//
//	manager := session.NewManager(session.WithOnRemove(sched.Stop))
//
//	sess, err := manager.Create("", config, roster)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Expire idle tables
//	removed := manager.CleanupExpiredSessions(24 * time.Hour)
package session
