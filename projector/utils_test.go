package projector

import (
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventatlas/portalfeed/model"
	"github.com/eventatlas/portalfeed/utils"
	"github.com/eventatlas/portalfeed/utils/dotenv"
)

func TestMain(m *testing.M) {
	dotenv.LoadDotEnvsInTests()
	os.Exit(m.Run())
}

func TestActivePortalIDs(t *testing.T) {
	db, _ := utils.CreateTempDB(t)

	a := utils.TestCreatePortalAndValidate(t, "Uptown Guide", "springfield", db)
	b := utils.TestCreatePortalAndValidate(t, "Oldtown After Dark", "springfield", db)

	retired := model.Portal{
		Id:     uuid.New().String(),
		Name:   "Retired Guide",
		City:   "springfield",
		Active: false,
	}
	require.NoError(t, db.Create(&retired).Error)

	ids, err := ActivePortalIDs(db)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a, b}, ids)
}
