package backend

import (
	"testing"

	"github.com/bornholm/ownsearch/internal/config"
	"github.com/bornholm/ownsearch/pkg/search"
	"github.com/bornholm/ownsearch/pkg/search/index"
	"github.com/bornholm/ownsearch/pkg/search/meta"
	"github.com/pkg/errors"
)

func TestNew(t *testing.T) {
	idx, err := index.NewMemOnly()
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	defer idx.Close()

	type testCase struct {
		Backend    string
		ShouldFail bool
		Check      func(t *testing.T, client search.Client)
		Google     config.Google
		WithoutIdx bool
	}

	testCases := []testCase{
		{
			Backend: KindIndex,
			Check: func(t *testing.T, client search.Client) {
				if _, ok := client.(*index.Index); !ok {
					t.Errorf("expected *index.Index, got %T", client)
				}
			},
		},
		{
			Backend:    KindIndex,
			WithoutIdx: true,
			ShouldFail: true,
		},
		{
			Backend: KindDuckDuckGo,
			Check: func(t *testing.T, client search.Client) {
				if _, ok := client.(*search.Retry); !ok {
					t.Errorf("expected *search.Retry, got %T", client)
				}
			},
		},
		{
			Backend:    KindGoogle,
			ShouldFail: true,
		},
		{
			Backend: KindGoogle,
			Google:  config.Google{APIKey: "key", CX: "engine"},
		},
		{
			Backend: KindMeta,
			Check: func(t *testing.T, client search.Client) {
				if _, ok := client.(*meta.Client); !ok {
					t.Errorf("expected *meta.Client, got %T", client)
				}
			},
		},
		{
			Backend:    "unknown",
			ShouldFail: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Backend, func(t *testing.T) {
			conf := config.Default()
			conf.Backend = tc.Backend
			conf.Google = tc.Google

			var i *index.Index
			if !tc.WithoutIdx {
				i = idx
			}

			client, release, err := New(conf, i)
			defer release()

			if tc.ShouldFail {
				if err == nil {
					t.Fatal("expected an error")
				}

				return
			}

			if err != nil {
				t.Fatalf("%+v", errors.WithStack(err))
			}

			if tc.Check != nil {
				tc.Check(t, client)
			}
		})
	}
}

func TestNewScraperUnknown(t *testing.T) {
	if _, _, err := NewScraper("telnet"); err == nil {
		t.Fatal("expected an error")
	}
}
