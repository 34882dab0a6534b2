package account

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestUserDocDecode(t *testing.T) {
	t.Parallel()

	base := userDoc{
		UserID:       uuid.NewString(),
		Email:        "legacy@example.com",
		PasswordHash: "$2a$10$hash",
		Role:         "user",
		CreatedAt:    time.Now().UTC(),
	}

	t.Run("absent is_verified decodes as verified", func(t *testing.T) {
		t.Parallel()

		doc := base
		doc.IsVerified = nil

		user, err := doc.toUser()
		require.NoError(t, err)
		assert.True(t, user.IsVerified, "records predating verification stay usable")
	})

	t.Run("explicit false decodes as unverified", func(t *testing.T) {
		t.Parallel()

		verified := false
		doc := base
		doc.IsVerified = &verified

		user, err := doc.toUser()
		require.NoError(t, err)
		assert.False(t, user.IsVerified)
	})

	t.Run("explicit true decodes as verified", func(t *testing.T) {
		t.Parallel()

		verified := true
		doc := base
		doc.IsVerified = &verified

		user, err := doc.toUser()
		require.NoError(t, err)
		assert.True(t, user.IsVerified)
	})

	t.Run("unknown role falls back to user", func(t *testing.T) {
		t.Parallel()

		doc := base
		doc.Role = "superuser"

		user, err := doc.toUser()
		require.NoError(t, err)
		assert.Equal(t, RoleUser, user.Role)
	})

	t.Run("invalid user_id errors", func(t *testing.T) {
		t.Parallel()

		doc := base
		doc.UserID = "not-a-uuid"

		_, err := doc.toUser()
		assert.Error(t, err)
	})
}

func TestUserDocEncode(t *testing.T) {
	t.Parallel()

	user := &User{
		ID:                 uuid.New(),
		Email:              "fresh@example.com",
		PasswordHash:       "$2a$10$hash",
		Role:               RoleAdmin,
		IsVerified:         false,
		EncryptedMasterKey: "ciphertext",
		CreatedAt:          time.Now().UTC(),
	}

	doc := toDoc(user)
	require.NotNil(t, doc.IsVerified, "new records always carry the verification flag")
	assert.False(t, *doc.IsVerified)
	assert.Equal(t, user.ID.String(), doc.UserID)

	user.IsVerified = true
	doc = toDoc(user)
	require.NotNil(t, doc.IsVerified)
	assert.True(t, *doc.IsVerified)

	decoded, err := doc.toUser()
	require.NoError(t, err)
	assert.Equal(t, user.ID, decoded.ID)
	assert.Equal(t, user.Role, decoded.Role)
	assert.Equal(t, user.EncryptedMasterKey, decoded.EncryptedMasterKey)
}

func TestPageVisitUpdate(t *testing.T) {
	t.Parallel()

	setStage := func(t *testing.T, page string) bson.M {
		t.Helper()
		pipeline := pageVisitUpdate(page)
		require.Len(t, pipeline, 1)
		require.Equal(t, "$set", pipeline[0][0].Key)
		set, ok := pipeline[0][0].Value.(bson.M)
		require.True(t, ok)
		return set
	}

	t.Run("deepest page compared server-side", func(t *testing.T) {
		t.Parallel()

		set := setStage(t, "/income")
		assert.Equal(t, "/income", set["last_page_visited"])

		cond, ok := set["deepest_page"].(bson.M)["$cond"].(bson.A)
		require.True(t, ok)

		// Replace only when this visit is strictly deeper than the stored
		// page, resolved inside the same update statement.
		deeper, ok := cond[0].(bson.M)["$gt"].(bson.A)
		require.True(t, ok)
		assert.Equal(t, PageDepth("/income"), deeper[0])
		storedDepth, ok := deeper[1].(bson.M)["$indexOfArray"].(bson.A)
		require.True(t, ok)
		assert.Equal(t, pageDepthOrder, storedDepth[0])

		assert.Equal(t, "/income", cond[1], "winner branch writes the new page")
		fallback, ok := cond[2].(bson.M)["$ifNull"].(bson.A)
		require.True(t, ok)
		assert.Equal(t, "$deepest_page", fallback[0], "loser branch keeps the stored page")
	})

	t.Run("pages outside the funnel never advance", func(t *testing.T) {
		t.Parallel()

		set := setStage(t, "/unknown")
		cond := set["deepest_page"].(bson.M)["$cond"].(bson.A)
		deeper := cond[0].(bson.M)["$gt"].(bson.A)
		assert.Equal(t, -1, deeper[0], "unknown depth can never exceed a stored one")
	})
}
