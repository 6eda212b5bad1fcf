package vidssave

var ChallengeTitle = challengeTitle
