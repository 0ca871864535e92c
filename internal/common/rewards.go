package common

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

type RewardConfig struct {
	QuizQuestionId string `yaml:"quiz_question_id"`
	AmountSats     int64  `yaml:"amount_sats"`
}

type RewardsConfig struct {
	Rewards []RewardConfig `yaml:"rewards"`
}

// LoadRewardConfig reads the onboarding reward table. Each row names a quiz
// question and the sats paid for answering it.
func LoadRewardConfig(rewardsFile string) ([]RewardConfig, error) {
	var rewardsPath string
	if filepath.IsAbs(rewardsFile) {
		rewardsPath = rewardsFile
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		rewardsPath = filepath.Join(wd, rewardsFile)
	}

	data, err := os.ReadFile(rewardsPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", rewardsFile, err)
	}

	var config RewardsConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", rewardsFile, err)
	}

	for i, reward := range config.Rewards {
		if reward.QuizQuestionId == "" {
			return nil, fmt.Errorf("reward at index %d missing quiz_question_id", i)
		}
		if reward.AmountSats <= 0 {
			return nil, fmt.Errorf("reward at index %d requires a positive amount", i)
		}
	}

	return config.Rewards, nil
}

// RewardAmounts indexes the reward table by quiz question id.
func RewardAmounts(rewardsFile string) (map[string]int64, error) {
	rewards, err := LoadRewardConfig(rewardsFile)
	if err != nil {
		return nil, err
	}

	amounts := make(map[string]int64, len(rewards))
	for _, reward := range rewards {
		amounts[reward.QuizQuestionId] = reward.AmountSats
	}
	return amounts, nil
}
