package repo

// score compara o palpite com o resultado oficial
// Resultado ainda não gravado ("") conta como errado: uma vez invocada a
// liquidação, não existe seleção "pendente"
func score(predicted, result string) bool {
	return result != "" && predicted == result
}

// verdict é won somente com todas as N seleções corretas
func verdict(correct []bool) string {
	for _, c := range correct {
		if !c {
			return "lost"
		}
	}
	return "won"
}
