//go:build integration

package controllers_test

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vnkhanh/survey-platform/api"
	"github.com/vnkhanh/survey-platform/config"
	"github.com/vnkhanh/survey-platform/internal/testutil/containers"
	"github.com/vnkhanh/survey-platform/models"
	"github.com/vnkhanh/survey-platform/utils"
)

type PostgresSuite struct {
	suite.Suite
	db  *gorm.DB
	url string
	e   *env
}

func TestPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container tests in short mode")
	}
	suite.Run(t, new(PostgresSuite))
}

func (s *PostgresSuite) SetupSuite() {
	pg := containers.NewPostgresContainer(s.T())
	db, err := config.ConnectDB(config.Config{DatabaseURL: pg.DSN})
	s.Require().NoError(err)
	s.db = db.Session(&gorm.Session{Logger: logger.Default.LogMode(logger.Silent)})
	s.url = containers.NewRedisContainer(s.T()).URL
}

func (s *PostgresSuite) SetupTest() {
	s.Require().NoError(s.db.Exec("TRUNCATE ballot, choice, question, survey, app_user RESTART IDENTITY CASCADE").Error)
	s.e = newEnvDB(s.T(), s.db)
}

func (s *PostgresSuite) TestConcurrentBallotsAreAllCounted() {
	owner, _ := s.e.user("owner")
	sv := s.e.survey(owner.ID, true, []string{"Lunch?", "Pizza", "Salad"}, []string{"Drink?", "Water"})
	q1, q2 := sv.Questions[0], sv.Questions[1]
	path := fmt.Sprintf("/api/surveys/%d/submit_votes/", sv.ID)

	const voters = 20
	var wg sync.WaitGroup
	codes := make(chan int, voters)
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w := s.e.do(http.MethodPost, path, "", api.SubmitVotesRequest{
				Answers: []api.Answer{
					{QuestionID: q1.ID, ChoiceID: q1.Choices[i%2].ID},
					{QuestionID: q2.ID, ChoiceID: q2.Choices[0].ID},
				},
				RecaptchaToken: "ok",
			})
			codes <- w.Code
		}(i)
	}
	wg.Wait()
	close(codes)
	for code := range codes {
		s.Equal(http.StatusOK, code)
	}

	s.Equal(voters/2, s.e.votes(q1.Choices[0].ID))
	s.Equal(voters/2, s.e.votes(q1.Choices[1].ID))
	s.Equal(voters, s.e.votes(q2.Choices[0].ID))

	var ballots int64
	s.Require().NoError(s.db.Model(&models.Ballot{}).Count(&ballots).Error)
	s.EqualValues(voters, ballots)
}

func (s *PostgresSuite) TestDeleteSurveyCascades() {
	owner, token := s.e.user("owner")
	sv := s.e.survey(owner.ID, true, []string{"Q", "a", "b"})
	s.Require().NoError(s.db.Create(&models.Ballot{SurveyID: sv.ID}).Error)

	w := s.e.do(http.MethodDelete, fmt.Sprintf("/api/surveys/%d/", sv.ID), token, nil)
	s.Require().Equal(http.StatusNoContent, w.Code, w.Body.String())

	for _, m := range []any{&models.Survey{}, &models.Question{}, &models.Choice{}, &models.Ballot{}} {
		var n int64
		s.Require().NoError(s.db.Model(m).Count(&n).Error)
		s.Zero(n, "%T", m)
	}
}

func (s *PostgresSuite) TestLogoutWithRedisBlacklist() {
	rdb, err := config.ConnectRedis(context.Background(), s.url)
	s.Require().NoError(err)
	s.T().Cleanup(func() { rdb.Close() })
	s.e.h.Blacklist = utils.NewRedisBlacklist(rdb)

	_, token := s.e.user("owner")
	s.Equal(http.StatusNoContent, s.e.do(http.MethodPost, "/api/logout/", token, nil).Code)
	s.Equal(http.StatusUnauthorized, s.e.do(http.MethodGet, "/api/surveys/", token, nil).Code)
}
