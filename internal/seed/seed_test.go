package seed

import (
    "context"
    "errors"
    "strconv"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "golang.org/x/crypto/bcrypt"

    "github.com/iliyamo/court-reservation/internal/model"
    "github.com/iliyamo/court-reservation/internal/utils"
)

// fakeWriter keys rows the way the unique indexes do.
type fakeWriter struct {
    users  map[string]uint64
    courts map[string]uint64
    slots  map[string]model.TimeSlot
    failOn string
}

func newFakeWriter() *fakeWriter {
    return &fakeWriter{users: map[string]uint64{}, courts: map[string]uint64{}, slots: map[string]model.TimeSlot{}}
}

func (f *fakeWriter) UpsertUser(_ context.Context, u *model.User) error {
    if _, ok := f.users[u.Email]; !ok {
        f.users[u.Email] = uint64(len(f.users) + 1)
    }
    u.ID = f.users[u.Email]
    return nil
}

func (f *fakeWriter) UpsertCourt(_ context.Context, c *model.Court) error {
    if c.Name == f.failOn {
        return errors.New("insert failed")
    }
    if _, ok := f.courts[c.Name]; !ok {
        f.courts[c.Name] = uint64(len(f.courts) + 1)
    }
    c.ID = f.courts[c.Name]
    return nil
}

func (f *fakeWriter) UpsertTimeSlot(_ context.Context, s *model.TimeSlot) error {
    key := s.StartTime + "@" + strconv.FormatUint(s.CourtID, 10)
    if _, ok := f.slots[key]; !ok {
        s.ID = uint64(len(f.slots) + 1)
        f.slots[key] = *s
    }
    return nil
}

func TestRun(t *testing.T) {
    w := newFakeWriter()
    res, err := Run(context.Background(), w, Options{Password: "secret", BcryptCost: bcrypt.MinCost})
    require.NoError(t, err)

    require.Len(t, res.Users, 3)
    assert.Equal(t, model.RoleAdmin, res.Users[0].Role)
    assert.True(t, utils.VerifyPassword(res.Users[1].PasswordHash, "secret"))
    require.Len(t, res.Courts, 4)
    assert.Equal(t, 4*14, res.Slots)
    assert.Len(t, w.slots, 4*14)
    assert.Equal(t, "21:00", w.slots["21:00@1"].StartTime)
    assert.Equal(t, "22:00", w.slots["21:00@1"].EndTime)

    for _, c := range res.Courts {
        assert.NotZero(t, c.ID)
        assert.True(t, model.ValidCategory(c.Category))
    }

    again, err := Run(context.Background(), w, Options{Password: "secret", BcryptCost: bcrypt.MinCost})
    require.NoError(t, err)
    assert.Equal(t, res.Users[2].ID, again.Users[2].ID)
    assert.Len(t, w.courts, 4)
    assert.Len(t, w.slots, 4*14)
}

func TestRunStopsOnError(t *testing.T) {
    w := newFakeWriter()
    w.failOn = "Tennis 1"
    res, err := Run(context.Background(), w, Options{BcryptCost: bcrypt.MinCost})
    assert.Error(t, err)
    assert.Len(t, res.Courts, 1)
}
