package main

import "github.com/lucasmenendez/agentpanelbot/deposit"

func mainMenu() [][]string {
	return [][]string{
		{CreditButton, DepositButton},
		{ReportButton},
	}
}

// agentMenu lays out one counterparty per row.
func agentMenu(options []deposit.Option) ([][]string, [][]string) {
	labels := make([][]string, 0, len(options))
	values := make([][]string, 0, len(options))
	for _, opt := range options {
		labels = append(labels, []string{opt.Label})
		values = append(values, []string{opt.Value})
	}
	return labels, values
}
