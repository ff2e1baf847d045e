package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGet_InitializesOnce(t *testing.T) {
	m1 := Get()
	m2 := Get()

	assert.NotNil(t, m1)
	assert.Same(t, m1, m2)
	assert.NotNil(t, m1.PostsCreatedTotal)
	assert.NotNil(t, m1.UploadDurationSeconds)
}

func TestObserveQuery_DoesNotPanic(t *testing.T) {
	m := Get()
	assert.NotPanics(t, func() {
		m.ObserveQuery(context.Background(), "posts.list", time.Now(), nil)
		m.ObserveQuery(context.Background(), "posts.list", time.Now(), errors.New("boom"))
	})
}
