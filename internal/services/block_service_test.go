package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artfolio/artfolio-backend/internal/models"
)

// The schema must migrate and assign ids on sqlite, which has no uuid
// generator; BeforeCreate supplies the id client-side.
func TestSqliteSchemaAssignsClientSideIDs(t *testing.T) {
	db := setupTestDB(t)

	user := createTestUser(t, db, "fresh", models.UserTypeArtist)
	assert.NotEqual(t, uuid.Nil, user.ID)

	block := &models.Block{BlockerID: user.ID, BlockedID: uuid.New()}
	require.NoError(t, db.Create(block).Error)
	assert.NotEqual(t, uuid.Nil, block.ID)
}

func TestBlockAndUnblock(t *testing.T) {
	db := setupTestDB(t)
	svc := NewBlockService(db)

	alice := createTestUser(t, db, "alice", models.UserTypeArtist)
	bob := createTestUser(t, db, "bob", models.UserTypeArtist)

	block, err := svc.Block(alice.ID, bob.ID, "spammy comments")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, block.BlockerID)
	assert.Equal(t, bob.ID, block.BlockedID)

	blocked, err := svc.IsBlocked(alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, blocked)

	// Directional: bob has not blocked alice.
	reverse, err := svc.IsBlocked(bob.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, reverse)

	require.NoError(t, svc.Unblock(alice.ID, bob.ID))

	blocked, err = svc.IsBlocked(alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestBlockSelf(t *testing.T) {
	db := setupTestDB(t)
	svc := NewBlockService(db)

	alice := createTestUser(t, db, "alice", models.UserTypeArtist)

	_, err := svc.Block(alice.ID, alice.ID, "")
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestBlockUnknownTarget(t *testing.T) {
	db := setupTestDB(t)
	svc := NewBlockService(db)

	alice := createTestUser(t, db, "alice", models.UserTypeArtist)
	ghost := createTestUser(t, db, "ghost", models.UserTypeArtist)
	require.NoError(t, db.Unscoped().Delete(ghost).Error)

	_, err := svc.Block(alice.ID, ghost.ID, "")
	var notFoundErr *NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
}

func TestBlockTwiceConflicts(t *testing.T) {
	db := setupTestDB(t)
	svc := NewBlockService(db)

	alice := createTestUser(t, db, "alice", models.UserTypeArtist)
	bob := createTestUser(t, db, "bob", models.UserTypeArtist)

	_, err := svc.Block(alice.ID, bob.ID, "")
	require.NoError(t, err)

	_, err = svc.Block(alice.ID, bob.ID, "")
	var conflictErr *ConflictError
	assert.ErrorAs(t, err, &conflictErr)
}

func TestUnblockWithoutBlock(t *testing.T) {
	db := setupTestDB(t)
	svc := NewBlockService(db)

	alice := createTestUser(t, db, "alice", models.UserTypeArtist)
	bob := createTestUser(t, db, "bob", models.UserTypeArtist)

	err := svc.Unblock(alice.ID, bob.ID)
	var notFoundErr *NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
}

func TestReblockAfterUnblock(t *testing.T) {
	db := setupTestDB(t)
	svc := NewBlockService(db)

	alice := createTestUser(t, db, "alice", models.UserTypeArtist)
	bob := createTestUser(t, db, "bob", models.UserTypeArtist)

	_, err := svc.Block(alice.ID, bob.ID, "")
	require.NoError(t, err)
	require.NoError(t, svc.Unblock(alice.ID, bob.ID))

	_, err = svc.Block(alice.ID, bob.ID, "second time")
	require.NoError(t, err)

	blocked, err := svc.IsBlocked(alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, blocked)
}

func TestMutualStatus(t *testing.T) {
	db := setupTestDB(t)
	svc := NewBlockService(db)

	alice := createTestUser(t, db, "alice", models.UserTypeArtist)
	bob := createTestUser(t, db, "bob", models.UserTypeArtist)

	_, err := svc.Block(alice.ID, bob.ID, "")
	require.NoError(t, err)
	_, err = svc.Block(bob.ID, alice.ID, "")
	require.NoError(t, err)

	status, err := svc.MutualStatus(alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, status.ABlockedB)
	assert.True(t, status.BBlockedA)
	assert.True(t, status.AnyBlock)
}

func TestBlockedIDsOf(t *testing.T) {
	db := setupTestDB(t)
	svc := NewBlockService(db)

	alice := createTestUser(t, db, "alice", models.UserTypeArtist)
	bob := createTestUser(t, db, "bob", models.UserTypeArtist)
	carol := createTestUser(t, db, "carol", models.UserTypeArtist)

	_, err := svc.Block(alice.ID, bob.ID, "")
	require.NoError(t, err)
	_, err = svc.Block(alice.ID, carol.ID, "")
	require.NoError(t, err)

	ids, err := svc.BlockedIDsOf(alice.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{bob.ID, carol.ID}, ids)
}
