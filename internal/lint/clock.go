// SPDX-License-Identifier: MPL-2.0

package lint

import "time"

type (
	// Clock abstracts time for measuring module durations.
	Clock interface {
		Now() time.Time
		Since(t time.Time) time.Duration
	}

	realClock struct{}
)

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Since(t time.Time) time.Duration { return time.Since(t) }
