package quiz

// DefaultQuestions returns the crypto basics quiz used by the learning journey
func DefaultQuestions() Bank {
	return Bank{
		{
			Text: "What is a cryptocurrency wallet?",
			Options: []string{
				"A physical wallet for coins",
				"A digital tool to store and manage crypto",
				"A type of cryptocurrency",
				"A bank account",
			},
			Correct:     1,
			Explanation: "A cryptocurrency wallet is a digital tool that stores your private keys and allows you to manage your crypto assets.",
		},
		{
			Text: "What does 'blockchain' mean?",
			Options: []string{
				"A type of chain jewelry",
				"A chain of connected data blocks",
				"A block of ice",
				"A computer chain",
			},
			Correct:     1,
			Explanation: "Blockchain is a chain of connected data blocks, where each block contains transaction data and is linked to the previous block.",
		},
		{
			Text: "What is Ethereum?",
			Options: []string{
				"A type of internet",
				"A cryptocurrency only",
				"A blockchain platform for smart contracts",
				"A company name",
			},
			Correct:     2,
			Explanation: "Ethereum is a blockchain platform that supports smart contracts and decentralized applications, with ETH as its native cryptocurrency.",
		},
	}
}
