package repositories

import (
	"testing"

	"github.com/octoview/octoview/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepositoryUpsertIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	repoRepo := NewRepositoryRepository(db)

	integration := seedIntegration(t, db)

	first := models.NewRepository(555, "widgets", "octocat/widgets", integration.ID)
	first.Stars = 10
	first.Owner = &models.UserRef{Login: "octocat", ID: 9001}
	require.NoError(t, repoRepo.Upsert(first))

	// Same upstream repo observed again with fresh counters
	second := models.NewRepository(555, "widgets", "octocat/widgets", integration.ID)
	second.Stars = 42
	second.Owner = &models.UserRef{Login: "octocat", ID: 9001}
	require.NoError(t, repoRepo.Upsert(second))

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM repositories").Scan(&count))
	assert.Equal(t, 1, count)

	got, err := repoRepo.GetByRepoID(555)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID, "row identity survives the upsert")
	assert.Equal(t, 42, got.Stars)
	require.NotNil(t, got.Owner)
	assert.Equal(t, "octocat", got.Owner.Login)
}

func TestRepositoryUpsertKeepsOrgAssociation(t *testing.T) {
	db := newTestDB(t)
	repoRepo := NewRepositoryRepository(db)

	integration := seedIntegration(t, db)

	org := models.NewOrganization("777", "acme", "Acme Inc", integration.ID)
	require.NoError(t, NewOrganizationRepository(db).Upsert(org))

	viaOrg := models.NewRepository(555, "widgets", "acme/widgets", integration.ID)
	viaOrg.OrgID = &org.OrgID
	require.NoError(t, repoRepo.Upsert(viaOrg))

	// The same repo seen through the personal listing carries no org id;
	// the association must not be wiped.
	viaUser := models.NewRepository(555, "widgets", "acme/widgets", integration.ID)
	require.NoError(t, repoRepo.Upsert(viaUser))

	got, err := repoRepo.GetByRepoID(555)
	require.NoError(t, err)
	require.NotNil(t, got.OrgID)
	assert.Equal(t, "777", *got.OrgID)
}

func TestRepositoryGetByFullName(t *testing.T) {
	db := newTestDB(t)
	repoRepo := NewRepositoryRepository(db)

	integration := seedIntegration(t, db)
	seedRepository(t, db, integration.ID, 555, "octocat/widgets")
	seedRepository(t, db, integration.ID, 556, "octocat/gadgets")

	got, err := repoRepo.GetByFullName("octocat/gadgets")
	require.NoError(t, err)
	assert.Equal(t, int64(556), got.RepoID)

	repos, err := repoRepo.GetByIntegrationID(integration.ID)
	require.NoError(t, err)
	require.Len(t, repos, 2)
	assert.Equal(t, "octocat/gadgets", repos[0].FullName, "listing is ordered by full name")
}
