package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"
)

type StorageTestSuite struct {
	suite.Suite
	store *JSONStorage
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageTestSuite))
}

func (suite *StorageTestSuite) SetupTest() {
	suite.store = NewJSONStorage(suite.T().TempDir())
}

type snapshot struct {
	Score float64 `json:"score"`
	Note  string  `json:"note"`
}

func (suite *StorageTestSuite) TestSaveAndLoadRoundTrip() {
	in := snapshot{Score: 0.82, Note: "breakout setup"}

	path, err := suite.store.Save("analysis", "AAPL", "2024-03-05", in)
	suite.Require().NoError(err)
	suite.Equal(filepath.Join(suite.store.BaseDir, "AAPL", "2024-03-05_analysis.json"), path)

	var out snapshot
	suite.Require().NoError(suite.store.Load("analysis", "AAPL", "2024-03-05", &out))
	suite.Equal(in, out)
}

func (suite *StorageTestSuite) TestExists() {
	suite.False(suite.store.Exists("plan", "AAPL", "2024-03-05"))

	_, err := suite.store.Save("plan", "AAPL", "2024-03-05", map[string]string{"k": "v"})
	suite.Require().NoError(err)

	suite.True(suite.store.Exists("plan", "AAPL", "2024-03-05"))
}

func (suite *StorageTestSuite) TestLoadMissingFile() {
	var out snapshot
	err := suite.store.Load("plan", "MSFT", "2024-03-05", &out)
	suite.Require().Error(err)
}
