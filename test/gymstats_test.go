package test

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/2beens/gymdash/internal/gymapi"
	"github.com/2beens/gymdash/internal/gymstats"
	"github.com/2beens/gymdash/internal/gymstats/dashboard"
	"github.com/2beens/gymdash/internal/gymstats/enrich"
)

func (s *IntegrationTestSuite) TestGymstatsLifecycle() {
	t := s.T()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	session := doLogin(ctx, t, testUsername).Session

	// nothing loaded yet
	resp, err := http.DefaultClient.Do(newSessionRequest(ctx, t, "GET", "/gymstats/exercises/current", session, nil))
	s.Require().NoError(err)
	resp.Body.Close()
	s.Equal(http.StatusNotFound, resp.StatusCode)

	// create a squat with two sets
	resp, err = http.DefaultClient.Do(newSessionRequest(ctx, t, "POST", "/gymstats/exercises", session, gymstats.NewExerciseRequest{
		ExerciseID: "1",
		Sets: []gymapi.Set{
			{Reps: 5, Weight: 100},
			{Reps: 3, Weight: 110},
		},
	}))
	s.Require().NoError(err)
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	var created dashboard.CreatedExercise
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()
	s.Require().NotNil(created.Exercise)
	s.Len(created.Sets, 2)
	loggedID := created.Exercise.ID

	// load the dashboard
	resp, err = http.DefaultClient.Do(newSessionRequest(ctx, t, "GET", "/gymstats/exercises", session, nil))
	s.Require().NoError(err)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var snapshot dashboard.Snapshot
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&snapshot))
	resp.Body.Close()

	s.Require().Len(snapshot.Exercises, 1)
	squat := snapshot.Exercises[0]
	s.True(squat.ID.Equal(loggedID))
	s.Equal("Back Squat", squat.Name)
	s.Equal("https://video/squat", squat.VideoURL)
	s.Equal(enrich.SourceCache, squat.DefinitionSource)
	s.Len(squat.Sets, 2)
	s.Equal(2, snapshot.Statistics.TotalSets)
	s.Equal(8, snapshot.Statistics.TotalReps)
	s.Equal(110.0, snapshot.Statistics.MaxWeight)
	s.Equal(830.0, snapshot.Statistics.TotalVolume)
	s.Equal(2, snapshot.CatalogSize)

	// a second load is served from the catalog cache
	catalogCalls := s.gymAPI.catalogCalls()
	resp, err = http.DefaultClient.Do(newSessionRequest(ctx, t, "GET", "/gymstats/exercises", session, nil))
	s.Require().NoError(err)
	resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal(catalogCalls, s.gymAPI.catalogCalls())

	// current returns the last committed snapshot
	resp, err = http.DefaultClient.Do(newSessionRequest(ctx, t, "GET", "/gymstats/exercises/current", session, nil))
	s.Require().NoError(err)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var current dashboard.Snapshot
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&current))
	resp.Body.Close()
	s.Len(current.Exercises, 1)

	// sets of the logged exercise
	resp, err = http.DefaultClient.Do(newSessionRequest(ctx, t, "GET", "/gymstats/exercises/"+loggedID.String()+"/sets", session, nil))
	s.Require().NoError(err)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var setsResp gymstats.SetsResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&setsResp))
	resp.Body.Close()
	s.Len(setsResp.Sets, 2)

	// delete one set, then the whole exercise
	resp, err = http.DefaultClient.Do(newSessionRequest(ctx, t, "DELETE", "/gymstats/sets/"+setsResp.Sets[0].ID.String(), session, nil))
	s.Require().NoError(err)
	resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	resp, err = http.DefaultClient.Do(newSessionRequest(ctx, t, "DELETE", "/gymstats/exercises/"+loggedID.String(), session, nil))
	s.Require().NoError(err)
	resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	resp, err = http.DefaultClient.Do(newSessionRequest(ctx, t, "GET", "/gymstats/exercises", session, nil))
	s.Require().NoError(err)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	snapshot = dashboard.Snapshot{}
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&snapshot))
	resp.Body.Close()
	s.Empty(snapshot.Exercises)
}

func (s *IntegrationTestSuite) TestGymstatsInvalidScope() {
	t := s.T()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	session := doLogin(ctx, t, testUsername).Session
	resp, err := http.DefaultClient.Do(newSessionRequest(ctx, t, "GET", "/gymstats/exercises?scope=everyone", session, nil))
	s.Require().NoError(err)
	resp.Body.Close()
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}
