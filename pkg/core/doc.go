// Package core provides the domain models and error taxonomy shared by the
// analysis packages: engine configuration and evaluations, per-move records,
// full-game reports, and the job/batch state tracked by the scheduler.
package core
