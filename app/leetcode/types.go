package leetcode

import "time"

// Profile is the subset of a LeetCode public profile the tracker mirrors.
type Profile struct {
	Username         string
	AvatarURL        string
	Ranking          int
	TotalSolved      int
	EasySolved       int
	MediumSolved     int
	HardSolved       int
	TotalSubmissions int
	TotalAccepted    int
	Streak           int
	TotalActiveDays  int
	Calendar         []Day
}

// Day is the submission count for one UTC calendar day.
type Day struct {
	Date  time.Time
	Count int
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type difficultyCount struct {
	Difficulty  string `json:"difficulty"`
	Count       int    `json:"count"`
	Submissions int    `json:"submissions"`
}

type rawProfileResponse struct {
	Data struct {
		MatchedUser *struct {
			Username string `json:"username"`
			Profile  struct {
				Ranking    int    `json:"ranking"`
				UserAvatar string `json:"userAvatar"`
			} `json:"profile"`
			SubmitStatsGlobal struct {
				AcSubmissionNum    []difficultyCount `json:"acSubmissionNum"`
				TotalSubmissionNum []difficultyCount `json:"totalSubmissionNum"`
			} `json:"submitStatsGlobal"`
			UserCalendar *struct {
				Streak             int    `json:"streak"`
				TotalActiveDays    int    `json:"totalActiveDays"`
				SubmissionCalendar string `json:"submissionCalendar"`
			} `json:"userCalendar"`
		} `json:"matchedUser"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

const profileQuery = `query userProfile($username: String!) {
  matchedUser(username: $username) {
    username
    profile { ranking userAvatar }
    submitStatsGlobal {
      acSubmissionNum { difficulty count submissions }
      totalSubmissionNum { difficulty count submissions }
    }
    userCalendar { streak totalActiveDays submissionCalendar }
  }
}`
